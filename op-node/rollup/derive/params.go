package derive

import (
	"errors"
)

const (
	// DerivationVersion0 prefixes the calldata of every batcher transaction.
	DerivationVersion0 = 0

	// SingularBatchType is the version byte of a batch on the channel.
	SingularBatchType = 0

	// ChannelVersionBrotli prefixes brotli compressed channel data.
	ChannelVersionBrotli = 0x01
)

// ChannelIDLength defines the length of the channel IDs
const ChannelIDLength = 16

// FrameV0OverHeadSize is the absolute minimum size of a frame.
// This is the fixed overhead frame size, calculated as specified
// in the [Frame Format] specs: 16 + 2 + 4 + 1 = 23 bytes.
//
// [Frame Format]: https://github.com/ethereum-optimism/specs/blob/main/specs/protocol/derivation.md#frame-format
const FrameV0OverHeadSize = ChannelIDLength + 2 + 4 + 1

// MaxFrameLen is the maximum frame data length accepted when parsing.
const MaxFrameLen = 1_000_000

// MaxFramesPerChannel is bounded by the 16 bit frame number.
const MaxFramesPerChannel = 1 << 16

var (
	ErrEncoding             = errors.New("batch encoding error")
	ErrMaxFrameSizeTooSmall = errors.New("maxSize is too small to fit the fixed frame overhead")
	ErrTooManyFrames        = errors.New("channel data does not fit into the maximum number of frames")
)
