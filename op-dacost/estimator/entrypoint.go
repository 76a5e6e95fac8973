package estimator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/da-cost/op-dacost/flags"
	"github.com/mantlenetworkio/da-cost/op-dacost/metrics"
	"github.com/mantlenetworkio/da-cost/op-service/cliutil"
	"github.com/mantlenetworkio/da-cost/op-service/ctxinterrupt"
	"github.com/mantlenetworkio/da-cost/op-service/dial"
	"github.com/mantlenetworkio/da-cost/op-service/ioutil"
	oplog "github.com/mantlenetworkio/da-cost/op-service/log"
	"github.com/mantlenetworkio/da-cost/op-service/sources"
)

// Main is the entrypoint into the estimator.
// The report goes to the app writer, logs to the app error writer.
func Main(version string) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		if path := cliCtx.String(flags.ConfigFileFlag.Name); path != "" {
			if err := cliutil.ApplyConfigFile(cliCtx, path); err != nil {
				return fmt.Errorf("failed to apply config file: %w", err)
			}
		}
		if err := flags.CheckRequired(cliCtx); err != nil {
			return err
		}
		cfg := NewConfig(cliCtx)
		if err := cfg.Check(); err != nil {
			return fmt.Errorf("invalid CLI flags: %w", err)
		}

		l := oplog.NewLogger(errOut(cliCtx), cfg.LogConfig)
		oplog.SetGlobalLogHandler(l.Handler())
		l.Info("Initializing op-dacost", "version", version)

		ctx := ctxinterrupt.WithCancelOnInterrupt(cliCtx.Context)
		return Estimate(ctx, l, cfg, version, oplog.AppOut(cliCtx), errOut(cliCtx))
	}
}

// Estimate runs one estimate against the configured node and writes every requested output.
func Estimate(ctx context.Context, l log.Logger, cfg *CLIConfig, version string, out, errw io.Writer) error {
	m := metrics.NewMetrics("default")
	m.RecordInfo(version)

	rpcClient, err := dial.DialClientWithTimeout(ctx, dial.DefaultDialTimeout, cfg.RPCTimeout, l, cfg.Endpoint())
	if err != nil {
		return fmt.Errorf("failed to dial node: %w", err)
	}
	fetcher, err := sources.NewBlockClient(rpcClient, l, &sources.BlockClientConfig{
		RequestTimeout:    cfg.RPCTimeout,
		RequestsPerSecond: cfg.RPCRateLimit,
	})
	if err != nil {
		rpcClient.Close()
		return err
	}
	defer fetcher.Close()

	est := NewEstimator(l, m, fetcher, cfg)
	if cfg.Progress {
		est.WithProgress(ioutil.BarProgressor(errw, "fetching blocks"))
	} else {
		est.WithProgress(ioutil.NewLogProgressor(l, "Fetching blocks").Progressor)
	}

	var result *multierror.Error
	report, err := est.Run(ctx)
	if err != nil {
		result = multierror.Append(result, err)
	} else {
		result = multierror.Append(result, writeOutputs(out, report, cfg))
	}
	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to write metrics: %w", err))
		} else {
			l.Info("Wrote metrics", "path", cfg.MetricsTextfile)
		}
	}
	return result.ErrorOrNil()
}

func writeOutputs(out io.Writer, report *Report, cfg *CLIConfig) error {
	if err := WriteReport(out, report, cfg.Output, cfg.LogConfig.Color); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if cfg.DumpDir != "" {
		if err := WriteDumps(cfg.DumpDir, report); err != nil {
			return fmt.Errorf("failed to write dumps: %w", err)
		}
	}
	if cfg.PlotDir != "" {
		if err := WritePlots(cfg.PlotDir, report); err != nil {
			return fmt.Errorf("failed to write plots: %w", err)
		}
	}
	return nil
}

func errOut(ctx *cli.Context) io.Writer {
	if ctx == nil || ctx.App == nil || ctx.App.ErrWriter == nil {
		return os.Stderr
	}
	return ctx.App.ErrWriter
}
