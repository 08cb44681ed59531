// Command viewscan is the offline output scanner's CLI: generate a test
// keypair, scan one block via RPC, or follow a live block feed.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"viewscan/blockfeed"
	"viewscan/curve"
	"viewscan/rpcclient"
	"viewscan/scancache"
	"viewscan/scanner"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "newkeys":
		cmdNewKeys(os.Args[2:])
	case "scan":
		cmdScan(os.Args[2:])
	case "follow":
		cmdFollow(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: viewscan <newkeys|scan|follow> [flags]")
}

type walletKeys struct {
	ViewPrivateKey  string `json:"view_private_key"`
	ViewPublicKey   string `json:"view_public_key"`
	SpendPrivateKey string `json:"spend_private_key"`
	SpendPublicKey  string `json:"spend_public_key"`
}

func cmdNewKeys(args []string) {
	fs := flag.NewFlagSet("newkeys", flag.ExitOnError)
	out := fs.String("out", "wallet.json", "output file for the generated keypair")
	fs.Parse(args)

	viewPriv := mustRandomScalar()
	spendPriv := mustRandomScalar()

	keys := walletKeys{
		ViewPrivateKey:  hex.EncodeToString(viewPriv.Bytes()),
		ViewPublicKey:   hex.EncodeToString(curve.PointEncode(curve.ScalarMultBase(viewPriv))),
		SpendPrivateKey: hex.EncodeToString(spendPriv.Bytes()),
		SpendPublicKey:  hex.EncodeToString(curve.PointEncode(curve.ScalarMultBase(spendPriv))),
	}

	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		log.Fatalf("viewscan newkeys: marshal keys: %v", err)
	}
	if err := os.WriteFile(*out, data, 0600); err != nil {
		log.Fatalf("viewscan newkeys: write %s: %v", *out, err)
	}
	log.Printf("wrote %s", *out)
}

func mustRandomScalar() curve.Scalar {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		log.Fatalf("viewscan: read random bytes: %v", err)
	}
	s, err := curve.ScalarFromBytes(buf[:])
	if err != nil {
		log.Fatalf("viewscan: derive scalar: %v", err)
	}
	return s
}

func cmdScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	viewKeyHex := fs.String("view-key", "", "hex-encoded private view key")
	rpcURL := fs.String("rpc", "http://127.0.0.1:18081", "daemon RPC base URL")
	height := fs.Uint64("height", 0, "block height to scan")
	ceiling := fs.Uint64("safe-amount-ceiling", 0, "safe-amount ceiling in XMR (0 = default 9999)")
	cacheDir := fs.String("cache-dir", "", "directory for the scan-result cache (empty = disabled)")
	fs.Parse(args)

	if *viewKeyHex == "" {
		log.Fatal("viewscan scan: --view-key is required")
	}

	viewPriv := decodeViewKey(*viewKeyHex)

	var cache *scancache.Cache
	var fingerprint [8]byte
	if *cacheDir != "" {
		var err error
		cache, err = scancache.Open(*cacheDir)
		if err != nil {
			log.Fatalf("viewscan scan: open cache: %v", err)
		}
		defer cache.Close()
		fingerprint = scancache.Fingerprint(viewPriv)

		if cached, found, err := cache.Get(fingerprint, *height); err != nil {
			log.Fatalf("viewscan scan: read cache: %v", err)
		} else if found {
			log.Printf("cache hit for height %d", *height)
			printJSON(cached.Candidates)
			return
		}
	}

	client := rpcclient.New(*rpcURL)
	ctx := context.Background()

	_, hashes, err := client.GetBlockHashes(ctx, *height)
	if err != nil {
		log.Fatalf("viewscan scan: get_block(%d): %v", *height, err)
	}

	txs, err := client.GetTransactions(ctx, hashes)
	if err != nil {
		log.Fatalf("viewscan scan: get_transactions: %v", err)
	}

	cfg := scanner.DefaultConfig()
	if *ceiling != 0 {
		cfg.SafeAmountCeilingXMR = *ceiling
	}
	s := scanner.New(cfg)

	candidates, txErrors, err := s.ScanBlock(viewPriv, txs)
	if err != nil {
		log.Fatalf("viewscan scan: %v", err)
	}
	for _, te := range txErrors {
		log.Printf("tx %s: %v", te.TxHash, te.Err)
	}

	if cache != nil {
		errStrings := make([]string, len(txErrors))
		for i, te := range txErrors {
			errStrings[i] = fmt.Sprintf("%s: %v", te.TxHash, te.Err)
		}
		result := scancache.BlockScanResult{Height: *height, Candidates: candidates, TxErrors: errStrings}
		if err := cache.Put(fingerprint, result); err != nil {
			log.Printf("viewscan scan: write cache: %v", err)
		}
	}

	printJSON(candidates)
}

func cmdFollow(args []string) {
	fs := flag.NewFlagSet("follow", flag.ExitOnError)
	viewKeyHex := fs.String("view-key", "", "hex-encoded private view key")
	topic := fs.String("topic", "blocks", "gossipsub topic carrying new blocks")
	port := fs.Int("port", 0, "local libp2p listen port (0 = random)")
	cacheDir := fs.String("cache-dir", "", "directory for the scan-result cache (empty = disabled)")
	fs.Parse(args)

	if *viewKeyHex == "" {
		log.Fatal("viewscan follow: --view-key is required")
	}

	viewPriv := decodeViewKey(*viewKeyHex)

	var cache *scancache.Cache
	var fingerprint [8]byte
	if *cacheDir != "" {
		var err error
		cache, err = scancache.Open(*cacheDir)
		if err != nil {
			log.Fatalf("viewscan follow: open cache: %v", err)
		}
		defer cache.Close()
		fingerprint = scancache.Fingerprint(viewPriv)
	}

	feed, err := blockfeed.Open(*port, *topic, nil)
	if err != nil {
		log.Fatalf("viewscan follow: %v", err)
	}
	defer feed.Close()

	log.Printf("listening as %s, subscribed to %q", feed.HostID(), *topic)

	s := scanner.New(scanner.DefaultConfig())
	for block := range feed.Blocks() {
		candidates, txErrors, err := s.ScanBlock(viewPriv, block.Transactions)
		if err != nil {
			log.Printf("block %d: fatal scan error: %v", block.Height, err)
			continue
		}
		for _, te := range txErrors {
			log.Printf("block %d: tx %s: %v", block.Height, te.TxHash, te.Err)
		}

		if cache != nil {
			errStrings := make([]string, len(txErrors))
			for i, te := range txErrors {
				errStrings[i] = fmt.Sprintf("%s: %v", te.TxHash, te.Err)
			}
			result := scancache.BlockScanResult{Height: block.Height, Candidates: candidates, TxErrors: errStrings}
			if err := cache.Put(fingerprint, result); err != nil {
				log.Printf("viewscan follow: write cache: %v", err)
			}
		}

		if len(candidates) > 0 {
			printJSON(candidates)
		}
	}
}

func decodeViewKey(viewKeyHex string) curve.Scalar {
	raw, err := hex.DecodeString(viewKeyHex)
	if err != nil {
		log.Fatalf("viewscan: invalid --view-key hex: %v", err)
	}
	s, err := curve.ScalarFromBytes(raw)
	if err != nil {
		log.Fatalf("viewscan: invalid --view-key: %v", err)
	}
	return s
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("viewscan: marshal output: %v", err)
	}
	fmt.Println(string(data))
}
