package estimator

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/mantlenetworkio/da-cost/op-dacost/cost"
	"github.com/mantlenetworkio/da-cost/op-dacost/flags"
)

// Report is the outcome of one estimate.
type Report struct {
	StartBlock      uint64        `json:"start_block"`
	NumBlocks       uint64        `json:"num_blocks"`
	CompressionAlgo string        `json:"compression_algo"`
	Metadata        string        `json:"metadata"`
	Seed            int64         `json:"placeholder_seed,omitempty"`
	ChannelID       string        `json:"channel_id"`
	L1GasPriceGwei  float64       `json:"l1_gas_price_gwei,omitempty"`
	Batches         []BatchReport `json:"batches"`
	Channel         ChannelReport `json:"channel"`
}

type BatchReport struct {
	Number uint64 `json:"number"`
	Txs    int    `json:"txs"`
	cost.Metrics
	Fees *Fees `json:"fees,omitempty"`

	data []byte
}

// Data returns the encoded batch.
func (b *BatchReport) Data() []byte {
	return b.data
}

type ChannelReport struct {
	Batches int `json:"batches"`
	cost.Metrics
	Framed *cost.FramedMetrics `json:"framed,omitempty"`
	Fees   *Fees               `json:"fees,omitempty"`

	data []byte
}

// Data returns the uncompressed channel payload.
func (c *ChannelReport) Data() []byte {
	return c.data
}

// Fees are calldata fees in ether.
type Fees struct {
	Raw        string `json:"raw_eth"`
	Compressed string `json:"compressed_eth"`
	Framed     string `json:"framed_eth,omitempty"`
}

// WriteReport renders r to w in the given output format.
func WriteReport(w io.Writer, r *Report, format string, useColor bool) error {
	switch format {
	case flags.OutputText:
		return writeText(w, r, useColor)
	case flags.OutputTable:
		return writeTable(w, r)
	case flags.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}
}

type textWriter struct {
	w       io.Writer
	heading *color.Color
	err     error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) title(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = t.heading.Fprintf(t.w, format+"\n", args...)
}

func (t *textWriter) measurement(scope string, m cost.Metrics) {
	t.printf("%s size: %d bytes\n", scope, m.RawSize)
	t.printf("compressed %s size: %d bytes\n", scope, m.CompressedSize)
	t.printf("byte compression rate: %.2f%%\n", m.ByteCompressionRate)
	t.printf("uncompressed %s calldata gas cost: %d gas\n", scope, m.RawGas)
	t.printf("compressed %s calldata gas cost: %d gas\n", scope, m.CompressedGas)
	t.printf("calldata gas compression rate: %.2f%%\n", m.GasCompressionRate)
	t.printf("fastlz %s size: %d bytes\n", scope, m.FastLZSize)
}

func (t *textWriter) fees(f *Fees) {
	if f == nil {
		return
	}
	t.printf("uncompressed calldata fee: %s ETH\n", f.Raw)
	t.printf("compressed calldata fee: %s ETH\n", f.Compressed)
	if f.Framed != "" {
		t.printf("framed calldata fee: %s ETH\n", f.Framed)
	}
}

func writeText(w io.Writer, r *Report, useColor bool) error {
	heading := color.New(color.FgCyan, color.Bold)
	if !useColor {
		heading.DisableColor()
	}
	t := &textWriter{w: w, heading: heading}
	for i := range r.Batches {
		b := &r.Batches[i]
		t.title("batch %d (%d txs)", b.Number, b.Txs)
		t.measurement("batch", b.Metrics)
		t.fees(b.Fees)
		t.printf("\n")
	}
	c := &r.Channel
	t.title("channel %s (%d batches, %s)", r.ChannelID, c.Batches, r.CompressionAlgo)
	t.measurement("channel", c.Metrics)
	if c.Framed != nil {
		t.printf("frames: %d\n", c.Framed.Frames)
		t.printf("framed calldata size: %d bytes\n", c.Framed.FramedBytes)
		t.printf("framed calldata gas cost: %d gas\n", c.Framed.FramedGas)
	}
	t.fees(c.Fees)
	return t.err
}

func writeTable(w io.Writer, r *Report) error {
	table := tablewriter.NewWriter(w)
	header := []string{"Scope", "Size", "Compressed", "Byte rate", "Gas", "Compressed gas", "Gas rate", "FastLZ"}
	withFees := r.Channel.Fees != nil
	if withFees {
		header = append(header, "Fee (ETH)", "Compressed fee (ETH)")
	}
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	row := func(scope string, m cost.Metrics, f *Fees) []string {
		out := []string{
			scope,
			strconv.FormatUint(m.RawSize, 10),
			strconv.FormatUint(m.CompressedSize, 10),
			percent(m.ByteCompressionRate),
			strconv.FormatUint(m.RawGas, 10),
			strconv.FormatUint(m.CompressedGas, 10),
			percent(m.GasCompressionRate),
			strconv.FormatUint(m.FastLZSize, 10),
		}
		if f != nil {
			out = append(out, f.Raw, f.Compressed)
		}
		return out
	}
	for _, b := range r.Batches {
		table.Append(row(fmt.Sprintf("batch %d", b.Number), b.Metrics, b.Fees))
	}
	table.Append(row("channel", r.Channel.Metrics, r.Channel.Fees))
	table.Render()

	if fm := r.Channel.Framed; fm != nil {
		line := fmt.Sprintf("framed channel: %d frames, %d bytes, %d gas", fm.Frames, fm.FramedBytes, fm.FramedGas)
		if withFees && r.Channel.Fees.Framed != "" {
			line += fmt.Sprintf(", %s ETH", r.Channel.Fees.Framed)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
