package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/da-cost/op-node/rollup/derive"
	opservice "github.com/mantlenetworkio/da-cost/op-service"
	oplog "github.com/mantlenetworkio/da-cost/op-service/log"
)

const EnvVarPrefix = "OP_DACOST"

func prefixEnvVars(name string) []string {
	return opservice.PrefixEnvVar(EnvVarPrefix, name)
}

const (
	DefaultStartBlock   = 13_100_000
	DefaultNumBlocks    = 10
	DefaultMaxFrameSize = 120_000
)

const (
	MetadataPlaceholder = "placeholder"
	MetadataBlock       = "block"

	OutputText  = "text"
	OutputTable = "table"
	OutputJSON  = "json"
)

var (
	// Node
	L1EthRpcFlag = &cli.StringFlag{
		Name:    "l1-eth-rpc",
		Usage:   "HTTP provider URL for the node to read blocks from. Takes precedence over --alchemy-key",
		EnvVars: prefixEnvVars("L1_ETH_RPC"),
	}
	AlchemyKeyFlag = &cli.StringFlag{
		Name:    "alchemy-key",
		Usage:   "Alchemy API key, used to build the endpoint when --l1-eth-rpc is not set",
		EnvVars: append(prefixEnvVars("ALCHEMY_KEY"), "ALCHEMY_KEY"),
	}
	AlchemyNetworkFlag = &cli.StringFlag{
		Name:    "alchemy-network",
		Usage:   "Alchemy network subdomain, used together with --alchemy-key",
		Value:   "eth-mainnet",
		EnvVars: prefixEnvVars("ALCHEMY_NETWORK"),
	}
	RPCTimeoutFlag = &cli.DurationFlag{
		Name:    "rpc-timeout",
		Usage:   "Timeout of a single block request",
		Value:   30 * time.Second,
		EnvVars: prefixEnvVars("RPC_TIMEOUT"),
	}
	MaxConcurrentRequestsFlag = &cli.IntFlag{
		Name:    "max-concurrent-requests",
		Usage:   "Maximum number of block requests in flight",
		Value:   10,
		EnvVars: prefixEnvVars("MAX_CONCURRENT_REQUESTS"),
	}

	RPCRateLimitFlag = &cli.Float64Flag{
		Name:    "rpc-rate-limit",
		Usage:   "Maximum block requests per second, for hosted providers with request quotas. 0 disables the limit",
		Value:   0,
		EnvVars: prefixEnvVars("RPC_RATE_LIMIT"),
	}

	// Range
	StartBlockFlag = &cli.Uint64Flag{
		Name:    "start-block",
		Usage:   "First block height to estimate",
		Value:   DefaultStartBlock,
		EnvVars: prefixEnvVars("START_BLOCK"),
	}
	NumBlocksFlag = &cli.Uint64Flag{
		Name:    "num-blocks",
		Usage:   "Number of consecutive blocks to estimate",
		Value:   DefaultNumBlocks,
		EnvVars: prefixEnvVars("NUM_BLOCKS"),
	}

	// Batch encoding
	MetadataFlag = &cli.StringFlag{
		Name: "metadata",
		Usage: "Source of the batch parent and epoch hashes: 'placeholder' (random hashes) or " +
			"'block' (the block's own parent hash and hash)",
		Value:   MetadataPlaceholder,
		EnvVars: prefixEnvVars("METADATA"),
		Action: func(ctx *cli.Context, value string) error {
			if value != MetadataPlaceholder && value != MetadataBlock {
				return fmt.Errorf("metadata must be one of %q or %q, got %q", MetadataPlaceholder, MetadataBlock, value)
			}
			return nil
		},
	}
	PlaceholderSeedFlag = &cli.Int64Flag{
		Name:    "placeholder-seed",
		Usage:   "Seed for placeholder hashes and the channel ID. 0 draws a random seed",
		EnvVars: prefixEnvVars("PLACEHOLDER_SEED"),
	}
	TimestampFlag = &cli.Uint64Flag{
		Name:    "timestamp",
		Usage:   "Fixed batch timestamp. 0 uses each block's own timestamp",
		EnvVars: prefixEnvVars("TIMESTAMP"),
	}
	CompressionAlgoFlag = &cli.GenericFlag{
		Name:    "compression-algo",
		Usage:   "The compression algorithm to use. Valid options: " + fmt.Sprintf("%v", derive.CompressionAlgos),
		EnvVars: prefixEnvVars("COMPRESSION_ALGO"),
		Value: func() *derive.CompressionAlgo {
			currentAlgo := derive.Zlib
			return &currentAlgo
		}(),
	}
	MaxFrameSizeFlag = &cli.Uint64Flag{
		Name:    "max-frame-size",
		Usage:   "Maximum frame size when pricing the channel as batcher transactions. 0 disables frame pricing",
		Value:   DefaultMaxFrameSize,
		EnvVars: prefixEnvVars("MAX_FRAME_SIZE"),
	}
	L1GasPriceGweiFlag = &cli.Float64Flag{
		Name:    "l1-gas-price-gwei",
		Usage:   "L1 gas price in gwei used to quote calldata fees in ETH. 0 disables fee quotes",
		EnvVars: prefixEnvVars("L1_GAS_PRICE_GWEI"),
	}

	// Output
	OutputFlag = &cli.StringFlag{
		Name:    "output",
		Usage:   "Report format: 'text', 'table' or 'json'",
		Value:   OutputText,
		EnvVars: prefixEnvVars("OUTPUT"),
		Action: func(ctx *cli.Context, value string) error {
			switch value {
			case OutputText, OutputTable, OutputJSON:
				return nil
			}
			return fmt.Errorf("output must be one of text, table or json, got %q", value)
		},
	}
	DumpDirFlag = &cli.StringFlag{
		Name:    "dump-dir",
		Usage:   "Directory to write each batch and the channel to, as 0x-prefixed hex",
		EnvVars: prefixEnvVars("DUMP_DIR"),
	}
	PlotDirFlag = &cli.StringFlag{
		Name:    "plot.dir",
		Usage:   "Directory to write PNG charts of per-batch sizes and gas to",
		EnvVars: prefixEnvVars("PLOT_DIR"),
	}
	ProgressFlag = &cli.BoolFlag{
		Name:    "progress",
		Usage:   "Render a progress bar on stderr while fetching blocks",
		EnvVars: prefixEnvVars("PROGRESS"),
	}
	MetricsTextfileFlag = &cli.StringFlag{
		Name:    "metrics.textfile",
		Usage:   "Write the run's metrics to this file in the Prometheus text format",
		EnvVars: prefixEnvVars("METRICS_TEXTFILE"),
	}
	ConfigFileFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML file of flag-name = value pairs, applied to flags not set on the command line or environment",
		EnvVars: prefixEnvVars("CONFIG"),
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	L1EthRpcFlag,
	AlchemyKeyFlag,
	AlchemyNetworkFlag,
	RPCTimeoutFlag,
	MaxConcurrentRequestsFlag,
	RPCRateLimitFlag,
	StartBlockFlag,
	NumBlocksFlag,
	MetadataFlag,
	PlaceholderSeedFlag,
	TimestampFlag,
	CompressionAlgoFlag,
	MaxFrameSizeFlag,
	L1GasPriceGweiFlag,
	OutputFlag,
	DumpDirFlag,
	PlotDirFlag,
	ProgressFlag,
	MetricsTextfileFlag,
	ConfigFileFlag,
}

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

// Flags contains the list of configuration options available to the binary.
var Flags []cli.Flag

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	if !ctx.IsSet(L1EthRpcFlag.Name) && !ctx.IsSet(AlchemyKeyFlag.Name) {
		return fmt.Errorf("one of --%s or --%s is required", L1EthRpcFlag.Name, AlchemyKeyFlag.Name)
	}
	return nil
}
