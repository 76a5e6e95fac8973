package estimator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/da-cost/op-dacost/flags"
	"github.com/mantlenetworkio/da-cost/op-node/rollup/derive"
	oplog "github.com/mantlenetworkio/da-cost/op-service/log"
)

type CLIConfig struct {
	// L1EthRpc is the HTTP provider URL for the node blocks are read from.
	L1EthRpc string

	// AlchemyKey and AlchemyNetwork build the endpoint when L1EthRpc is empty.
	AlchemyKey     string
	AlchemyNetwork string

	RPCTimeout            time.Duration
	MaxConcurrentRequests int

	// RPCRateLimit caps block requests per second. 0 disables the limit.
	RPCRateLimit float64

	// StartBlock is the first height of the range, NumBlocks its length.
	StartBlock uint64
	NumBlocks  uint64

	// Metadata selects where batch parent and epoch hashes come from.
	Metadata string

	// PlaceholderSeed seeds the placeholder hashes and the channel ID. 0 draws a random seed.
	PlaceholderSeed int64

	// Timestamp overrides every batch timestamp when non-zero.
	Timestamp uint64

	CompressionAlgo derive.CompressionAlgo

	// MaxFrameSize is the frame size limit used to price the channel as
	// batcher transactions. 0 disables framing.
	MaxFrameSize uint64

	// L1GasPriceGwei prices calldata gas in ETH. 0 disables fee quotes.
	L1GasPriceGwei float64

	Output string

	DumpDir         string
	PlotDir         string
	Progress        bool
	MetricsTextfile string

	LogConfig oplog.CLIConfig
}

func (c *CLIConfig) Check() error {
	if c.L1EthRpc == "" && c.AlchemyKey == "" {
		return errors.New("empty L1 RPC URL and alchemy key")
	}
	if c.L1EthRpc == "" && c.AlchemyNetwork == "" {
		return errors.New("empty alchemy network")
	}
	if c.RPCTimeout <= 0 {
		return errors.New("RPCTimeout must be positive")
	}
	if c.MaxConcurrentRequests < 1 {
		return errors.New("MaxConcurrentRequests must be at least 1")
	}
	if c.RPCRateLimit < 0 || math.IsNaN(c.RPCRateLimit) || math.IsInf(c.RPCRateLimit, 0) {
		return fmt.Errorf("invalid RPC rate limit: %v", c.RPCRateLimit)
	}
	if c.NumBlocks == 0 {
		return errors.New("NumBlocks must be at least 1")
	}
	if c.StartBlock > math.MaxUint64-c.NumBlocks+1 {
		return fmt.Errorf("block range overflows: start %d, count %d", c.StartBlock, c.NumBlocks)
	}
	if c.Metadata != flags.MetadataPlaceholder && c.Metadata != flags.MetadataBlock {
		return fmt.Errorf("unknown metadata source: %q", c.Metadata)
	}
	if !derive.ValidCompressionAlgo(c.CompressionAlgo) {
		return fmt.Errorf("invalid compression algo %v", c.CompressionAlgo)
	}
	if c.MaxFrameSize != 0 && c.MaxFrameSize <= derive.FrameV0OverHeadSize {
		return fmt.Errorf("MaxFrameSize must be greater than %d: %w", derive.FrameV0OverHeadSize, derive.ErrMaxFrameSizeTooSmall)
	}
	if c.L1GasPriceGwei < 0 || math.IsNaN(c.L1GasPriceGwei) {
		return fmt.Errorf("invalid L1 gas price: %v gwei", c.L1GasPriceGwei)
	}
	switch c.Output {
	case flags.OutputText, flags.OutputTable, flags.OutputJSON:
	default:
		return fmt.Errorf("unknown output format: %q", c.Output)
	}
	return nil
}

// Endpoint returns the node URL, built from the alchemy credential when no URL is set.
func (c *CLIConfig) Endpoint() string {
	if c.L1EthRpc != "" {
		return c.L1EthRpc
	}
	return fmt.Sprintf("https://%s.g.alchemy.com/v2/%s", c.AlchemyNetwork, c.AlchemyKey)
}

// EndBlock is the last height of the range, inclusive.
func (c *CLIConfig) EndBlock() uint64 {
	return c.StartBlock + c.NumBlocks - 1
}

func NewConfig(ctx *cli.Context) *CLIConfig {
	return &CLIConfig{
		L1EthRpc:              ctx.String(flags.L1EthRpcFlag.Name),
		AlchemyKey:            ctx.String(flags.AlchemyKeyFlag.Name),
		AlchemyNetwork:        ctx.String(flags.AlchemyNetworkFlag.Name),
		RPCTimeout:            ctx.Duration(flags.RPCTimeoutFlag.Name),
		MaxConcurrentRequests: ctx.Int(flags.MaxConcurrentRequestsFlag.Name),
		RPCRateLimit:          ctx.Float64(flags.RPCRateLimitFlag.Name),
		StartBlock:            ctx.Uint64(flags.StartBlockFlag.Name),
		NumBlocks:             ctx.Uint64(flags.NumBlocksFlag.Name),
		Metadata:              ctx.String(flags.MetadataFlag.Name),
		PlaceholderSeed:       ctx.Int64(flags.PlaceholderSeedFlag.Name),
		Timestamp:             ctx.Uint64(flags.TimestampFlag.Name),
		CompressionAlgo:       derive.CompressionAlgo(ctx.String(flags.CompressionAlgoFlag.Name)),
		MaxFrameSize:          ctx.Uint64(flags.MaxFrameSizeFlag.Name),
		L1GasPriceGwei:        ctx.Float64(flags.L1GasPriceGweiFlag.Name),
		Output:                ctx.String(flags.OutputFlag.Name),
		DumpDir:               ctx.String(flags.DumpDirFlag.Name),
		PlotDir:               ctx.String(flags.PlotDirFlag.Name),
		Progress:              ctx.Bool(flags.ProgressFlag.Name),
		MetricsTextfile:       ctx.String(flags.MetricsTextfileFlag.Name),
		LogConfig:             oplog.ReadCLIConfig(ctx),
	}
}
