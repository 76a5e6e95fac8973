package estimator

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/da-cost/op-dacost/cost"
	"github.com/mantlenetworkio/da-cost/op-dacost/flags"
	"github.com/mantlenetworkio/da-cost/op-dacost/metrics"
	"github.com/mantlenetworkio/da-cost/op-node/rollup/derive"
	"github.com/mantlenetworkio/da-cost/op-service/eth"
	"github.com/mantlenetworkio/da-cost/op-service/ioutil"
	"github.com/mantlenetworkio/da-cost/op-service/sources"
)

// Estimator fetches a block range, encodes every block as a batch, joins the
// batches into one channel and prices all of them as calldata.
type Estimator struct {
	log      log.Logger
	metr     metrics.Metricer
	fetcher  sources.BlockFetcher
	cfg      *CLIConfig
	progress ioutil.Progressor
}

func NewEstimator(log log.Logger, m metrics.Metricer, fetcher sources.BlockFetcher, cfg *CLIConfig) *Estimator {
	return &Estimator{
		log:      log,
		metr:     m,
		fetcher:  fetcher,
		cfg:      cfg,
		progress: ioutil.NoopProgressor(),
	}
}

// WithProgress reports fetched blocks to p.
func (e *Estimator) WithProgress(p ioutil.Progressor) *Estimator {
	e.progress = p
	return e
}

// Run executes one estimate over the configured block range.
func (e *Estimator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	defer func() { e.metr.RecordRunDuration(time.Since(start)) }()

	seed := e.cfg.PlaceholderSeed
	if seed == 0 {
		var err error
		if seed, err = randomSeed(); err != nil {
			return nil, err
		}
	}
	rng := rand.New(rand.NewSource(seed))
	meta, err := NewMetadataSource(e.cfg.Metadata, rng, e.cfg.Timestamp)
	if err != nil {
		return nil, err
	}
	if e.cfg.Metadata == flags.MetadataPlaceholder {
		e.log.Warn("Batch parent and epoch hashes are random placeholders", "seed", seed)
	}

	e.log.Info("Fetching blocks", "start", e.cfg.StartBlock, "end", e.cfg.EndBlock(),
		"concurrency", e.cfg.MaxConcurrentRequests)
	blocks, err := FetchBlocks(ctx, e.log, e.metr, e.fetcher,
		e.cfg.StartBlock, e.cfg.NumBlocks, e.cfg.MaxConcurrentRequests, e.progress)
	if err != nil {
		return nil, err
	}

	id, err := derive.NewChannelID(rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel id: %w", err)
	}
	report, err := e.Estimate(blocks, meta, id)
	if err != nil {
		return nil, err
	}
	report.Seed = seed
	return report, nil
}

// Estimate encodes and prices already fetched blocks, in the order given.
func (e *Estimator) Estimate(blocks []*sources.RPCBlock, meta MetadataSource, id derive.ChannelID) (*Report, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("no blocks: %w", cost.ErrEmptyInput)
	}
	var gasPrice *eth.ETH
	if e.cfg.L1GasPriceGwei > 0 {
		p, err := eth.GweiToWei(e.cfg.L1GasPriceGwei)
		if err != nil {
			return nil, fmt.Errorf("invalid L1 gas price: %w", err)
		}
		gasPrice = &p
	}

	report := &Report{
		StartBlock:      uint64(blocks[0].Number),
		NumBlocks:       uint64(len(blocks)),
		CompressionAlgo: e.cfg.CompressionAlgo.String(),
		Metadata:        e.cfg.Metadata,
		ChannelID:       id.String(),
		L1GasPriceGwei:  e.cfg.L1GasPriceGwei,
	}

	co := derive.NewChannelOut(id)
	for _, block := range blocks {
		number := uint64(block.Number)
		txs, err := sources.NormalizeBlock(block)
		if err != nil {
			return nil, err
		}
		batch := derive.NewSingularBatch(meta.Metadata(block), txs)
		data, err := batch.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to encode batch %d: %w", number, err)
		}
		if err := co.AddBatch(data); err != nil {
			return nil, fmt.Errorf("failed to add batch %d: %w", number, err)
		}
		m, err := cost.Measure(data, e.cfg.CompressionAlgo)
		if err != nil {
			return nil, fmt.Errorf("failed to measure batch %d: %w", number, err)
		}
		fees, err := quote(gasPrice, m, nil)
		if err != nil {
			return nil, err
		}
		batch.LogContext(e.log).Debug("Encoded batch", "size", m.RawSize, "compressed", m.CompressedSize)
		e.metr.RecordBatch(number, m)
		report.Batches = append(report.Batches, BatchReport{
			Number:  number,
			Txs:     len(txs),
			Metrics: m,
			Fees:    fees,
			data:    data,
		})
	}

	channel := co.Bytes()
	m, err := cost.Measure(channel, e.cfg.CompressionAlgo)
	if err != nil {
		return nil, fmt.Errorf("failed to measure channel: %w", err)
	}
	e.metr.RecordChannel(co.NumBatches(), m)
	report.Channel = ChannelReport{
		Batches: co.NumBatches(),
		Metrics: m,
		data:    channel,
	}

	if e.cfg.MaxFrameSize > 0 {
		frames, err := co.Frames(e.cfg.CompressionAlgo, e.cfg.MaxFrameSize)
		if err != nil {
			return nil, fmt.Errorf("failed to split channel into frames: %w", err)
		}
		fm, err := cost.MeasureFrames(frames)
		if err != nil {
			return nil, err
		}
		e.metr.RecordFrames(fm)
		report.Channel.Framed = &fm
	}
	if report.Channel.Fees, err = quote(gasPrice, m, report.Channel.Framed); err != nil {
		return nil, err
	}

	e.log.Info("Estimated channel", "id", id, "batches", co.NumBatches(), "size", m.RawSize,
		"compressed", m.CompressedSize, "gas", m.RawGas, "compressed_gas", m.CompressedGas)
	return report, nil
}

// quote prices the gas figures at gasPrice. A nil price disables quotes.
func quote(gasPrice *eth.ETH, m cost.Metrics, fm *cost.FramedMetrics) (*Fees, error) {
	if gasPrice == nil {
		return nil, nil
	}
	raw, err := eth.CalldataFee(m.RawGas, *gasPrice)
	if err != nil {
		return nil, err
	}
	compressed, err := eth.CalldataFee(m.CompressedGas, *gasPrice)
	if err != nil {
		return nil, err
	}
	fees := &Fees{Raw: raw.EtherString(), Compressed: compressed.EtherString()}
	if fm != nil {
		framed, err := eth.CalldataFee(fm.FramedGas, *gasPrice)
		if err != nil {
			return nil, err
		}
		fees.Framed = framed.EtherString()
	}
	return fees, nil
}

func randomSeed() (int64, error) {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("failed to read random seed: %w", err)
		}
		// 0 means unseeded
		if seed := int64(binary.BigEndian.Uint64(b[:])); seed != 0 {
			return seed, nil
		}
	}
}
