package estimator

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/mantlenetworkio/da-cost/op-dacost/metrics"
	"github.com/mantlenetworkio/da-cost/op-service/ioutil"
	"github.com/mantlenetworkio/da-cost/op-service/sources"
)

// FetchBlocks fetches count blocks starting at start, with at most concurrency
// requests in flight. The result is in ascending height order regardless of the
// order requests complete in. The first error cancels the remaining requests.
func FetchBlocks(ctx context.Context, lgr log.Logger, m metrics.Metricer, fetcher sources.BlockFetcher,
	start, count uint64, concurrency int, progress ioutil.Progressor) ([]*sources.RPCBlock, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	blocks := make([]*sources.RPCBlock, count)
	counter := &ioutil.Counter{Total: int64(count), Progressor: progress}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := uint64(0); i < count; i++ {
		number := start + i
		g.Go(func() error {
			block, err := fetcher.BlockWithTransactions(gctx, number)
			if err != nil {
				return fmt.Errorf("failed to fetch block %d: %w", number, err)
			}
			lgr.Debug("Fetched block", "number", number, "txs", len(block.Transactions))
			m.RecordBlockFetched(number, len(block.Transactions))
			blocks[i] = block
			counter.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}
