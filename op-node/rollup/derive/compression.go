package derive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

type CompressionAlgo string

const (
	// compression algo types
	Zlib     CompressionAlgo = "zlib"
	Brotli   CompressionAlgo = "brotli" // default level
	Brotli9  CompressionAlgo = "brotli-9"
	Brotli10 CompressionAlgo = "brotli-10"
	Brotli11 CompressionAlgo = "brotli-11"
	Zstd     CompressionAlgo = "zstd"
)

var CompressionAlgos = []CompressionAlgo{
	Zlib,
	Brotli,
	Brotli9,
	Brotli10,
	Brotli11,
	Zstd,
}

func (algo CompressionAlgo) String() string {
	return string(algo)
}

func (algo *CompressionAlgo) Set(value string) error {
	if !ValidCompressionAlgo(CompressionAlgo(value)) {
		return fmt.Errorf("unknown compression algo: %s", value)
	}
	*algo = CompressionAlgo(value)
	return nil
}

func (algo *CompressionAlgo) Clone() any {
	cpy := *algo
	return &cpy
}

func (algo CompressionAlgo) IsBrotli() bool {
	switch algo {
	case Brotli, Brotli9, Brotli10, Brotli11:
		return true
	}
	return false
}

func GetBrotliLevel(algo CompressionAlgo) int {
	switch algo {
	case Brotli9:
		return 9
	case Brotli10, Brotli:
		return 10
	case Brotli11:
		return 11
	default:
		panic("Unsupported brotli level")
	}
}

func ValidCompressionAlgo(value CompressionAlgo) bool {
	for _, k := range CompressionAlgos {
		if k == value {
			return true
		}
	}
	return false
}

// Compress returns data compressed with algo.
// Brotli output carries the ChannelVersionBrotli prefix byte, as on L1.
func Compress(algo CompressionAlgo, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	switch {
	case algo == Zlib:
		// Lower levels emit stored blocks for small inputs.
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("failed to create zlib writer: %w", err)
		}
		w = zw
	case algo.IsBrotli():
		buf.WriteByte(ChannelVersionBrotli)
		w = brotli.NewWriterLevel(&buf, GetBrotliLevel(algo))
	case algo == Zstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("unknown compression algo: %q", algo)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress with %s: %w", algo, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s writer: %w", algo, err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress. The estimator never reads compressed data back;
// it is used to check Compress output.
func Decompress(algo CompressionAlgo, data []byte) ([]byte, error) {
	var r io.Reader
	switch {
	case algo == Zlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open zlib reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case algo.IsBrotli():
		if len(data) == 0 || data[0] != ChannelVersionBrotli {
			return nil, errors.New("missing brotli channel version byte")
		}
		r = brotli.NewReader(bytes.NewReader(data[1:]))
	case algo == Zstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	default:
		return nil, fmt.Errorf("unknown compression algo: %q", algo)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress with %s: %w", algo, err)
	}
	return out, nil
}
