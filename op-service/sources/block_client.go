// Package sources exports the clients used to access ethereum chain data.
//
// [BlockClient] wraps an RPC client to retrieve full blocks, and
// [RPCTransaction.RawTransaction] rebuilds the signed envelopes of their transactions.
package sources

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/time/rate"

	"github.com/mantlenetworkio/da-cost/op-service/client"
)

var ErrNodeFetch = errors.New("failed to fetch block from node")

type BlockClientConfig struct {
	// RequestTimeout bounds every individual request.
	RequestTimeout time.Duration

	// RequestsPerSecond caps the request rate across all callers. 0 disables the limit.
	RequestsPerSecond float64
}

func DefaultBlockClientConfig() *BlockClientConfig {
	return &BlockClientConfig{RequestTimeout: 30 * time.Second}
}

func (c *BlockClientConfig) Check() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RequestsPerSecond < 0 || math.IsNaN(c.RequestsPerSecond) || math.IsInf(c.RequestsPerSecond, 0) {
		return fmt.Errorf("invalid request rate: %v", c.RequestsPerSecond)
	}
	return nil
}

// BlockFetcher fetches a block with full transaction objects by number.
type BlockFetcher interface {
	BlockWithTransactions(ctx context.Context, number uint64) (*RPCBlock, error)
}

// BlockClient retrieves blocks with eth_getBlockByNumber.
type BlockClient struct {
	client  client.RPC
	log     log.Logger
	cfg     BlockClientConfig
	limiter *rate.Limiter
}

var _ BlockFetcher = (*BlockClient)(nil)

func NewBlockClient(client client.RPC, log log.Logger, config *BlockClientConfig) (*BlockClient, error) {
	if config == nil {
		config = DefaultBlockClientConfig()
	}
	if err := config.Check(); err != nil {
		return nil, fmt.Errorf("bad config, cannot create block client: %w", err)
	}
	bc := &BlockClient{client: client, log: log, cfg: *config}
	if config.RequestsPerSecond > 0 {
		bc.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return bc, nil
}

// BlockWithTransactions returns the block at the given height.
// All failures wrap ErrNodeFetch; a missing block also matches ethereum.NotFound.
func (s *BlockClient) BlockWithTransactions(ctx context.Context, number uint64) (*RPCBlock, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w %d: rate limit: %w", ErrNodeFetch, number, err)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	var block *RPCBlock
	if err := s.client.CallContext(ctx, &block, "eth_getBlockByNumber", hexutil.EncodeUint64(number), true); err != nil {
		return nil, fmt.Errorf("%w %d: %w", ErrNodeFetch, number, err)
	}
	if block == nil {
		return nil, fmt.Errorf("%w %d: %w", ErrNodeFetch, number, ethereum.NotFound)
	}
	if uint64(block.Number) != number {
		return nil, fmt.Errorf("%w: expected block number %d but got block %d", ErrNodeFetch, number, uint64(block.Number))
	}
	s.log.Debug("Fetched block", "number", number, "hash", block.Hash, "txs", len(block.Transactions))
	return block, nil
}

func (s *BlockClient) Close() {
	s.client.Close()
}
