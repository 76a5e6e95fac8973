package cost

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mantlenetworkio/da-cost/op-node/rollup/derive"
	"github.com/mantlenetworkio/da-cost/op-service/testutils"
)

func TestRate(t *testing.T) {
	tests := []struct {
		compressed, raw uint64
		expected        float64
	}{
		{50, 100, 50},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{120, 100, 120},
		{0, 100, 0},
		{10, 0, 0},
		{0, 0, 0},
	}
	for _, tc := range tests {
		require.Equal(t, tc.expected, Rate(tc.compressed, tc.raw), "%d/%d", tc.compressed, tc.raw)
	}
}

func TestMeasure(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	raw := bytes.Repeat(testutils.RandomData(rng, 100), 30)

	m, err := Measure(raw, derive.Zlib)
	require.NoError(t, err)
	compressed, err := derive.Compress(derive.Zlib, raw)
	require.NoError(t, err)

	require.EqualValues(t, len(raw), m.RawSize)
	require.EqualValues(t, len(compressed), m.CompressedSize)
	require.Equal(t, CalldataGas(raw), m.RawGas)
	require.Equal(t, CalldataGas(compressed), m.CompressedGas)
	require.Equal(t, Rate(m.CompressedSize, m.RawSize), m.ByteCompressionRate)
	require.Equal(t, Rate(m.CompressedGas, m.RawGas), m.GasCompressionRate)
	require.EqualValues(t, types.FlzCompressLen(raw), m.FastLZSize)
	require.Less(t, m.ByteCompressionRate, 100.0)
}

func TestMeasureDeterministic(t *testing.T) {
	batch, err := derive.CreateBatch(derive.BlockMetadata{Timestamp: 1620000000}, nil)
	require.NoError(t, err)
	for _, algo := range derive.CompressionAlgos {
		a, err := Measure(batch, algo)
		require.NoError(t, err)
		b, err := Measure(batch, algo)
		require.NoError(t, err)
		require.Equal(t, a, b, algo.String())
	}
}

func TestMeasureEmptyInput(t *testing.T) {
	_, err := Measure(nil, derive.Zlib)
	require.ErrorIs(t, err, ErrEmptyInput)
	_, err = MeasureCompressed([]byte{}, []byte{1})
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestMeasureUnknownAlgo(t *testing.T) {
	_, err := Measure([]byte{1}, "lz4")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrEmptyInput)
}

func TestMeasureFrames(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	data := testutils.RandomData(rng, 250)
	frames, err := derive.FramesFromData(derive.ChannelID{0x01}, data, 100+derive.FrameV0OverHeadSize)
	require.NoError(t, err)

	fm, err := MeasureFrames(frames)
	require.NoError(t, err)
	require.Equal(t, 3, fm.Frames)
	require.EqualValues(t, 250+3*(1+derive.FrameV0OverHeadSize), fm.FramedBytes)

	var gas uint64
	for _, f := range frames {
		cd, err := derive.FrameCalldata(f)
		require.NoError(t, err)
		gas += CalldataGas(cd)
	}
	require.Equal(t, gas, fm.FramedGas)
}
