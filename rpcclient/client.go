// Package rpcclient is a thin daemon RPC collaborator: JSON-RPC
// get_block by height, and raw get_transactions batched at 100 hashes
// per request. It does no retrying, pooling, or circuit breaking.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"

	"viewscan/types"
)

const batchSize = 100

// Client talks to a single daemon RPC endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithSocks5 routes all requests through a SOCKS5 proxy at addr
// ("host:port").
func WithSocks5(addr string) Option {
	return func(c *Client) {
		dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
		if err != nil {
			return
		}
		c.httpClient.Transport = &http.Transport{Dial: dialer.Dial}
	}
}

// New constructs a Client against a daemon's base URL
// (e.g. "http://127.0.0.1:18081").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type jsonRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type jsonRPCResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type getBlockParams struct {
	Height uint64 `json:"height"`
}

type getBlockResult struct {
	BlockHeader struct {
		Height uint64 `json:"height"`
	} `json:"block_header"`
	TxHashes []string `json:"tx_hashes"`
}

// GetBlockHashes fetches the block header and the hashes of every
// transaction in the block at height.
func (c *Client) GetBlockHashes(ctx context.Context, height uint64) (uint64, []string, error) {
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      "0",
		Method:  "get_block",
		Params:  getBlockParams{Height: height},
	}

	var result getBlockResult
	if err := c.callJSONRPC(ctx, req, &result); err != nil {
		return 0, nil, fmt.Errorf("rpcclient: get_block(%d): %w", height, err)
	}
	return result.BlockHeader.Height, result.TxHashes, nil
}

// GetTransactions fetches the full logical transaction shape for every
// hash, batching at 100 hashes per request. Entries whose as_json does
// not decode are skipped, so the result can be shorter than hashes.
func (c *Client) GetTransactions(ctx context.Context, hashes []string) ([]types.Transaction, error) {
	var all []types.Transaction

	for start := 0; start < len(hashes); start += batchSize {
		end := start + batchSize
		if end > len(hashes) {
			end = len(hashes)
		}
		batch, err := c.getTransactionsBatch(ctx, hashes[start:end])
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}

	return all, nil
}

type getTransactionsRequest struct {
	TxsHashes    []string `json:"txs_hashes"`
	DecodeAsJSON bool     `json:"decode_as_json"`
}

type getTransactionsResponse struct {
	Txs []struct {
		AsJSON string `json:"as_json"`
		TxHash string `json:"tx_hash"`
	} `json:"txs"`
}

func (c *Client) getTransactionsBatch(ctx context.Context, hashes []string) ([]types.Transaction, error) {
	reqBody := getTransactionsRequest{TxsHashes: hashes, DecodeAsJSON: true}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: marshal get_transactions request: %w", err)
	}

	endpoint, err := url.JoinPath(c.baseURL, "get_transactions")
	if err != nil {
		return nil, fmt.Errorf("rpcclient: build endpoint: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("rpcclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: get_transactions: %w", err)
	}
	defer resp.Body.Close()

	var parsed getTransactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("rpcclient: decode get_transactions response: %w", err)
	}

	txs := make([]types.Transaction, 0, len(parsed.Txs))
	for _, entry := range parsed.Txs {
		var tx types.Transaction
		if err := json.Unmarshal([]byte(entry.AsJSON), &tx); err != nil {
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (c *Client) callJSONRPC(ctx context.Context, req jsonRPCRequest, out interface{}) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint, err := url.JoinPath(c.baseURL, "json_rpc")
	if err != nil {
		return fmt.Errorf("build endpoint: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var parsed jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("rpc error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	return json.Unmarshal(parsed.Result, out)
}
