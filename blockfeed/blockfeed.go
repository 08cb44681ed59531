// Package blockfeed subscribes to a gossipsub topic carrying
// JSON-encoded blocks and pushes each decoded block onto a channel for
// the scanner facade to consume — an alternative to polling the RPC
// client. The feed is subscribe-only: it broadcasts nothing and
// participates in no consensus or validation.
package blockfeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/multiformats/go-multiaddr"

	"viewscan/types"
)

// Block pairs a height with its ordered transaction list.
type Block struct {
	Height       uint64              `json:"height"`
	Transactions []types.Transaction `json:"transactions"`
}

// Feed is a subscribe-only live block source.
type Feed struct {
	host   host.Host
	pubsub *pubsub.PubSub
	sub    *pubsub.Subscription
	ctx    context.Context
	cancel context.CancelFunc
	topic  string
}

// Open creates a libp2p host, joins gossipsub, and subscribes to topic.
// bootstrapPeers, if non-empty, are dialed best-effort before
// subscribing; a failed dial is non-fatal.
func Open(listenPort int, topic string, bootstrapPeers []string) (*Feed, error) {
	ctx, cancel := context.WithCancel(context.Background())

	h, err := libp2p.New(
		libp2p.ListenAddrStrings(fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", listenPort)),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("blockfeed: create host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		cancel()
		h.Close()
		return nil, fmt.Errorf("blockfeed: create gossipsub: %w", err)
	}

	t, err := ps.Join(topic)
	if err != nil {
		cancel()
		h.Close()
		return nil, fmt.Errorf("blockfeed: join topic %s: %w", topic, err)
	}

	sub, err := t.Subscribe()
	if err != nil {
		cancel()
		h.Close()
		return nil, fmt.Errorf("blockfeed: subscribe to %s: %w", topic, err)
	}

	for _, addr := range bootstrapPeers {
		if err := connectPeer(ctx, h, addr); err != nil {
			fmt.Printf("blockfeed: failed to connect to bootstrap peer %s: %v\n", addr, err)
		}
	}

	return &Feed{host: h, pubsub: ps, sub: sub, ctx: ctx, cancel: cancel, topic: topic}, nil
}

// Blocks returns a channel of decoded blocks. Malformed payloads are
// dropped (logged) rather than closing the channel, so one bad publish
// never stalls the feed. The channel closes when the feed's context is
// cancelled (Close).
func (f *Feed) Blocks() <-chan Block {
	out := make(chan Block)
	go func() {
		defer close(out)
		for {
			msg, err := f.sub.Next(f.ctx)
			if err != nil {
				if f.ctx.Err() != nil {
					return
				}
				fmt.Printf("blockfeed: error receiving message: %v\n", err)
				continue
			}
			if msg.ReceivedFrom == f.host.ID() {
				continue
			}

			var block Block
			if err := json.Unmarshal(msg.Data, &block); err != nil {
				fmt.Printf("blockfeed: malformed block payload: %v\n", err)
				continue
			}

			select {
			case out <- block:
			case <-f.ctx.Done():
				return
			}
		}
	}()
	return out
}

// HostID returns the libp2p peer ID of the feed's host.
func (f *Feed) HostID() string {
	return f.host.ID().String()
}

// Close tears down the subscription and host.
func (f *Feed) Close() error {
	f.cancel()
	return f.host.Close()
}

func connectPeer(ctx context.Context, h host.Host, addrStr string) error {
	addr, err := multiaddr.NewMultiaddr(addrStr)
	if err != nil {
		return err
	}

	info, err := peer.AddrInfoFromP2pAddr(addr)
	if err != nil {
		return err
	}

	return h.Connect(ctx, *info)
}
