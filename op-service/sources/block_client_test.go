package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mantlenetworkio/da-cost/op-service/client"
	"github.com/mantlenetworkio/da-cost/op-service/testlog"
)

type jsonrpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// startBlockServer serves eth_getBlockByNumber from blocks, keyed by the hex block number.
func startBlockServer(t *testing.T, blocks map[string]any) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonrpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if req.Method != "eth_getBlockByNumber" || len(req.Params) != 2 || string(req.Params[1]) != "true" {
			resp["error"] = map[string]any{"code": -32601, "message": "unexpected request"}
		} else {
			var number string
			_ = json.Unmarshal(req.Params[0], &number)
			result, ok := blocks[number]
			switch {
			case !ok:
				resp["result"] = nil
			case result == "error":
				resp["error"] = map[string]any{"code": -32000, "message": "header not found", "data": "pruned"}
			default:
				resp["result"] = result
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestBlockClient(t *testing.T, url string) *BlockClient {
	rpcClient, err := rpc.DialHTTP(url)
	require.NoError(t, err)
	bc, err := NewBlockClient(client.NewBaseRPCClient(rpcClient), testlog.Logger(t, log.LevelDebug), &BlockClientConfig{RequestTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(bc.Close)
	return bc
}

func TestBlockWithTransactions(t *testing.T) {
	parent := common.Hash{0x01}
	server := startBlockServer(t, map[string]any{
		"0xc7e3e0": map[string]any{
			"number":       "0xc7e3e0",
			"hash":         common.Hash{0x02},
			"parentHash":   parent,
			"timestamp":    "0x6090e100",
			"miner":        "0x0000000000000000000000000000000000000000",
			"transactions": []any{map[string]any{"nonce": "0x1", "gas": "0x5208", "type": "0x0", "hash": common.Hash{0x03}}},
		},
		"0x2":  "error",
		"0x10": map[string]any{"number": "0x11", "transactions": []any{}},
	})
	bc := newTestBlockClient(t, server.URL)

	block, err := bc.BlockWithTransactions(context.Background(), 13100000)
	require.NoError(t, err)
	require.EqualValues(t, 13100000, block.Number)
	require.Equal(t, parent, block.ParentHash)
	require.EqualValues(t, 0x6090e100, block.Timestamp)
	require.Len(t, block.Transactions, 1)
	require.Equal(t, hexutil.Uint64(0x5208), *block.Transactions[0].Gas)

	_, err = bc.BlockWithTransactions(context.Background(), 1)
	require.ErrorIs(t, err, ErrNodeFetch)
	require.ErrorIs(t, err, ethereum.NotFound)

	_, err = bc.BlockWithTransactions(context.Background(), 2)
	require.ErrorIs(t, err, ErrNodeFetch)
	require.ErrorContains(t, err, "header not found")

	_, err = bc.BlockWithTransactions(context.Background(), 16)
	require.ErrorIs(t, err, ErrNodeFetch)
	require.ErrorContains(t, err, "expected block number 16")
}

func TestBlockWithTransactionsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	rpcClient, err := rpc.DialHTTP(server.URL)
	require.NoError(t, err)
	bc, err := NewBlockClient(client.NewBaseRPCClient(rpcClient), testlog.Logger(t, log.LevelInfo), &BlockClientConfig{RequestTimeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = bc.BlockWithTransactions(context.Background(), 1)
	require.ErrorIs(t, err, ErrNodeFetch)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBlockClientConfigCheck(t *testing.T) {
	require.NoError(t, DefaultBlockClientConfig().Check())
	require.Error(t, (&BlockClientConfig{}).Check())
	require.Error(t, (&BlockClientConfig{RequestTimeout: time.Second, RequestsPerSecond: -1}).Check())
	_, err := NewBlockClient(nil, nil, &BlockClientConfig{RequestTimeout: -1})
	require.Error(t, err)
}

func TestBlockWithTransactionsRateLimited(t *testing.T) {
	server := startBlockServer(t, map[string]any{
		"0x1": map[string]any{"number": "0x1", "transactions": []any{}},
	})
	rpcClient, err := rpc.DialHTTP(server.URL)
	require.NoError(t, err)
	bc, err := NewBlockClient(client.NewBaseRPCClient(rpcClient), testlog.Logger(t, log.LevelInfo),
		&BlockClientConfig{RequestTimeout: time.Second, RequestsPerSecond: 20})
	require.NoError(t, err)
	t.Cleanup(bc.Close)

	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := bc.BlockWithTransactions(context.Background(), 1)
		require.NoError(t, err)
	}
	// one burst token, then one request every 50ms
	require.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = bc.BlockWithTransactions(ctx, 1)
	require.ErrorIs(t, err, ErrNodeFetch)
}
