package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mr-tron/base58"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the RPC node answers 429
var ErrRateLimited = errors.New("rpc rate limited")

// RPCError is an error object returned by the node
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client is a minimal JSON-RPC client for the calls the raffle explorer needs
type Client struct {
	BaseURL    string
	MaxRetries int // retries of a rate limited call
	client     *http.Client
	limiter    *rate.Limiter
	retry      backoff.Backoff
	nextID     uint64
}

// KeyedAccount is an account returned by getProgramAccounts
type KeyedAccount struct {
	Pubkey string
	Data   []byte
}

// MemcmpFilter matches accounts whose data holds Bytes at Offset
type MemcmpFilter struct {
	Offset int
	Bytes  []byte
}

// ProgramAccountsFilter narrows getProgramAccounts results
type ProgramAccountsFilter struct {
	DataSize int
	Memcmp   *MemcmpFilter
}

// NewClient creates a new RPC client. requestsPerSecond <= 0 disables throttling.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		BaseURL:    baseURL,
		MaxRetries: 3,
		client:     &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		retry: backoff.Backoff{
			Min:    250 * time.Millisecond,
			Max:    5 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

type accountInfo struct {
	Data []string `json:"data"` // [payload, encoding]
}

func (a *accountInfo) decode() ([]byte, error) {
	if len(a.Data) != 2 || a.Data[1] != "base64" {
		return nil, fmt.Errorf("unexpected account data encoding %v", a.Data)
	}
	return base64.StdEncoding.DecodeString(a.Data[0])
}

// GetProgramAccounts returns all accounts owned by programID matching filter
func (c *Client) GetProgramAccounts(ctx context.Context, programID string, filter ProgramAccountsFilter) ([]KeyedAccount, error) {
	var filters []interface{}
	if filter.DataSize > 0 {
		filters = append(filters, map[string]interface{}{"dataSize": filter.DataSize})
	}
	if filter.Memcmp != nil {
		filters = append(filters, map[string]interface{}{
			"memcmp": map[string]interface{}{
				"offset": filter.Memcmp.Offset,
				"bytes":  base58.Encode(filter.Memcmp.Bytes),
			},
		})
	}

	config := map[string]interface{}{"encoding": "base64"}
	if len(filters) > 0 {
		config["filters"] = filters
	}

	var result []struct {
		Pubkey  string      `json:"pubkey"`
		Account accountInfo `json:"account"`
	}
	if err := c.call(ctx, "getProgramAccounts", []interface{}{programID, config}, &result); err != nil {
		return nil, err
	}

	accounts := make([]KeyedAccount, 0, len(result))
	for _, item := range result {
		data, err := item.Account.decode()
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", item.Pubkey, err)
		}
		accounts = append(accounts, KeyedAccount{Pubkey: item.Pubkey, Data: data})
	}
	return accounts, nil
}

// GetMultipleAccounts returns the data of each address; missing accounts are nil
func (c *Client) GetMultipleAccounts(ctx context.Context, addresses []string) ([][]byte, error) {
	var result struct {
		Value []*accountInfo `json:"value"`
	}
	params := []interface{}{addresses, map[string]interface{}{"encoding": "base64"}}
	if err := c.call(ctx, "getMultipleAccounts", params, &result); err != nil {
		return nil, err
	}
	if len(result.Value) != len(addresses) {
		return nil, fmt.Errorf("getMultipleAccounts: asked for %d accounts, got %d", len(addresses), len(result.Value))
	}

	data := make([][]byte, len(addresses))
	for i, info := range result.Value {
		if info == nil {
			continue
		}
		decoded, err := info.decode()
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", addresses[i], err)
		}
		data[i] = decoded
	}
	return data, nil
}

// call retries rate limited requests with exponential backoff
func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	b := c.retry
	for attempt := 0; ; attempt++ {
		err := c.callOnce(ctx, method, params, out)
		if !errors.Is(err, ErrRateLimited) || attempt >= c.MaxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}

func (c *Client) callOnce(ctx context.Context, method string, params []interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&c.nextID, 1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", method, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", method, err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("%s: %w", method, decoded.Error)
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return fmt.Errorf("%s: failed to decode result: %w", method, err)
	}
	return nil
}
