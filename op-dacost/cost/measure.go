package cost

import (
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mantlenetworkio/da-cost/op-node/rollup/derive"
)

var ErrEmptyInput = errors.New("empty input")

// Metrics is the size and calldata cost of one payload before and after compression.
type Metrics struct {
	RawSize             uint64  `json:"raw_size"`
	CompressedSize      uint64  `json:"compressed_size"`
	ByteCompressionRate float64 `json:"byte_compression_rate"`
	RawGas              uint64  `json:"raw_gas"`
	CompressedGas       uint64  `json:"compressed_gas"`
	GasCompressionRate  float64 `json:"gas_compression_rate"`
	// FastLZSize is the FastLZ compressed length used by the Fjord L1 fee.
	FastLZSize uint64 `json:"fastlz_size"`
}

// Rate returns compressed as a percentage of raw, rounded to two decimals.
// A zero denominator yields 0.
func Rate(compressed, raw uint64) float64 {
	if raw == 0 {
		return 0
	}
	return math.Round(float64(compressed)/float64(raw)*100*100) / 100
}

// Measure compresses raw with algo and prices both forms.
func Measure(raw []byte, algo derive.CompressionAlgo) (Metrics, error) {
	if len(raw) == 0 {
		return Metrics{}, ErrEmptyInput
	}
	compressed, err := derive.Compress(algo, raw)
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to compress: %w", err)
	}
	return MeasureCompressed(raw, compressed)
}

// MeasureCompressed prices raw and an already compressed form of it.
func MeasureCompressed(raw, compressed []byte) (Metrics, error) {
	if len(raw) == 0 {
		return Metrics{}, ErrEmptyInput
	}
	cd := types.NewRollupCostData(raw)
	m := Metrics{
		RawSize:        uint64(len(raw)),
		CompressedSize: uint64(len(compressed)),
		RawGas:         cd.Zeroes*ZeroByteGas + cd.Ones*NonZeroByteGas,
		CompressedGas:  CalldataGas(compressed),
		FastLZSize:     cd.FastLzSize,
	}
	m.ByteCompressionRate = Rate(m.CompressedSize, m.RawSize)
	m.GasCompressionRate = Rate(m.CompressedGas, m.RawGas)
	return m, nil
}

// FramedMetrics prices a channel published as one batcher transaction per frame.
type FramedMetrics struct {
	Frames      int    `json:"frames"`
	FramedBytes uint64 `json:"framed_bytes"`
	FramedGas   uint64 `json:"framed_gas"`
}

// MeasureFrames prices every frame as the calldata of its own batcher transaction.
func MeasureFrames(frames []derive.Frame) (FramedMetrics, error) {
	out := FramedMetrics{Frames: len(frames)}
	for _, f := range frames {
		data, err := derive.FrameCalldata(f)
		if err != nil {
			return FramedMetrics{}, fmt.Errorf("failed to encode frame %d: %w", f.FrameNumber, err)
		}
		out.FramedBytes += uint64(len(data))
		out.FramedGas += CalldataGas(data)
	}
	return out, nil
}
