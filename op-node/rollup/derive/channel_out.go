package derive

import (
	"bytes"
	"fmt"
)

// ChannelOut accumulates encoded batches into one channel payload.
// Batches are concatenated in the order they are added, without separators,
// so the payload cannot be split back into batches.
type ChannelOut struct {
	id      ChannelID
	buf     bytes.Buffer
	batches int
}

func NewChannelOut(id ChannelID) *ChannelOut {
	return &ChannelOut{id: id}
}

func (co *ChannelOut) ID() ChannelID {
	return co.id
}

// AddBatch appends an already encoded batch.
func (co *ChannelOut) AddBatch(batch []byte) error {
	if len(batch) == 0 {
		return fmt.Errorf("%w: empty batch", ErrEncoding)
	}
	co.buf.Write(batch)
	co.batches++
	return nil
}

// AddSingularBatch encodes the batch and appends it.
// The channel is left untouched if encoding fails.
func (co *ChannelOut) AddSingularBatch(b *SingularBatch) error {
	data, err := b.MarshalBinary()
	if err != nil {
		return err
	}
	return co.AddBatch(data)
}

// Bytes returns a copy of the channel payload.
func (co *ChannelOut) Bytes() []byte {
	return bytes.Clone(co.buf.Bytes())
}

func (co *ChannelOut) Len() int {
	return co.buf.Len()
}

func (co *ChannelOut) NumBatches() int {
	return co.batches
}

// Frames compresses the channel payload and splits it into frames of at most maxFrameSize bytes.
func (co *ChannelOut) Frames(algo CompressionAlgo, maxFrameSize uint64) ([]Frame, error) {
	data, err := Compress(algo, co.buf.Bytes())
	if err != nil {
		return nil, err
	}
	return FramesFromData(co.id, data, maxFrameSize)
}

// ConcatBatches joins encoded batches into a channel payload.
func ConcatBatches(batches ...[]byte) []byte {
	return bytes.Join(batches, nil)
}
