package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/da-cost/op-dacost/estimator"
	"github.com/mantlenetworkio/da-cost/op-dacost/flags"
	opservice "github.com/mantlenetworkio/da-cost/op-service"
	"github.com/mantlenetworkio/da-cost/op-service/cliapp"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

// VersionWithMeta holds the textual version string including the metadata.
var VersionWithMeta = opservice.FormatVersion(Version, GitCommit, GitDate, opservice.Meta)

func main() {
	app := cli.NewApp()
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Version = VersionWithMeta
	app.Name = "op-dacost"
	app.Usage = "Calldata DA cost estimator"
	app.Description = "Encodes a range of L1 blocks as OP-stack batches, joins them into a channel " +
		"and reports the size and calldata gas of every batch and the channel, before and after compression."
	app.Action = estimator.Main(VersionWithMeta)
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	err := app.RunContext(context.Background(), os.Args)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}
