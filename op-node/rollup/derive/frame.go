package derive

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ChannelID is an opaque identifier for a channel.
type ChannelID [ChannelIDLength]byte

// NewChannelID reads a channel ID from r, typically crypto/rand.Reader.
func NewChannelID(r io.Reader) (ChannelID, error) {
	var id ChannelID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return ChannelID{}, fmt.Errorf("failed to read channel id: %w", err)
	}
	return id, nil
}

func (id ChannelID) String() string {
	return hex.EncodeToString(id[:])
}

// TerminalString implements log.TerminalStringer, formatting a string for console
// output during logging.
func (id ChannelID) TerminalString() string {
	return fmt.Sprintf("%x..%x", id[:3], id[13:])
}

// Frames are stored in L1 transactions with the following format:
// DerivationVersion0 ++ frame
// where frame is:
// frame = channel_id ++ frame_number ++ frame_data_length ++ frame_data ++ is_last
type Frame struct {
	ID          ChannelID `json:"id"`
	FrameNumber uint16    `json:"frame_number"`
	Data        []byte    `json:"data"`
	IsLast      bool      `json:"is_last"`
}

// Size returns the number of bytes the frame occupies on the wire.
func (f *Frame) Size() uint64 {
	return uint64(len(f.Data)) + FrameV0OverHeadSize
}

// MarshalBinary writes the frame to `w`.
// It returns any errors encountered while writing, but
// generally expects the writer very rarely fail.
func (f *Frame) MarshalBinary(w io.Writer) error {
	var hdr [FrameV0OverHeadSize - 1]byte
	copy(hdr[:ChannelIDLength], f.ID[:])
	binary.BigEndian.PutUint16(hdr[ChannelIDLength:], f.FrameNumber)
	binary.BigEndian.PutUint32(hdr[ChannelIDLength+2:], uint32(len(f.Data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(f.Data); err != nil {
		return err
	}
	last := byte(0)
	if f.IsLast {
		last = 1
	}
	_, err := w.Write([]byte{last})
	return err
}

type ByteReader interface {
	io.Reader
	io.ByteReader
}

// UnmarshalBinary consumes a full frame from the reader.
// If `r` fails a read, it returns the error from the reader
// The reader will be left in a partially read state.
//
// If r doesn't return any bytes, returns io.EOF.
// If r unexpectedly stops returning data half-way, returns io.ErrUnexpectedEOF.
func (f *Frame) UnmarshalBinary(r ByteReader) error {
	if _, err := io.ReadFull(r, f.ID[:]); err != nil {
		// Forward io.EOF here ok, would mean not a single byte from r.
		return fmt.Errorf("reading channel_id: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &f.FrameNumber); err != nil {
		return fmt.Errorf("reading frame_number: %w", eofAsUnexpectedMissing(err))
	}

	var frameLength uint32
	if err := binary.Read(r, binary.BigEndian, &frameLength); err != nil {
		return fmt.Errorf("reading frame_data_length: %w", eofAsUnexpectedMissing(err))
	}

	// Cap frame length to MaxFrameLen (currently 1MB)
	if frameLength > MaxFrameLen {
		return fmt.Errorf("frame_data_length is too large: %d", frameLength)
	}
	f.Data = make([]byte, int(frameLength))
	if _, err := io.ReadFull(r, f.Data); err != nil {
		return fmt.Errorf("reading frame_data: %w", eofAsUnexpectedMissing(err))
	}

	if isLastByte, err := r.ReadByte(); err != nil {
		return fmt.Errorf("reading final byte (is_last): %w", eofAsUnexpectedMissing(err))
	} else if isLastByte == 0 {
		f.IsLast = false
	} else if isLastByte == 1 {
		f.IsLast = true
	} else {
		return errors.New("invalid byte as is_last")
	}
	return nil
}

// FrameCalldata returns the calldata of a batcher transaction carrying the single frame f.
func FrameCalldata(f Frame) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(1 + int(f.Size()))
	buf.WriteByte(DerivationVersion0)
	if err := f.MarshalBinary(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseFrames parse the on chain serialization of frame(s) in
// an L1 transaction. Currently only version 0 of the serialization
// format is supported.
// All frames must be parsed without error and there must be at least one frame.
// Only used to verify the frames produced by FramesFromData.
func ParseFrames(data []byte) ([]Frame, error) {
	if len(data) == 0 {
		return nil, errors.New("data array must not be empty")
	}
	if data[0] != DerivationVersion0 {
		return nil, fmt.Errorf("invalid derivation format byte: got %d", data[0])
	}
	buf := bytes.NewBuffer(data[1:])
	var frames []Frame
	for buf.Len() > 0 {
		var f Frame
		if err := f.UnmarshalBinary(buf); err != nil {
			return nil, fmt.Errorf("parsing frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
	if len(frames) == 0 {
		return nil, errors.New("was not able to find any frames")
	}
	return frames, nil
}

// FramesFromData splits channel data into consecutive frames of at most maxFrameSize bytes each.
// The final frame is marked as last. Empty data still yields one closing frame.
func FramesFromData(id ChannelID, data []byte, maxFrameSize uint64) ([]Frame, error) {
	if maxFrameSize <= FrameV0OverHeadSize {
		return nil, ErrMaxFrameSizeTooSmall
	}
	chunk := maxFrameSize - FrameV0OverHeadSize
	n := (uint64(len(data)) + chunk - 1) / chunk
	if n == 0 {
		n = 1
	}
	if n > MaxFramesPerChannel {
		return nil, fmt.Errorf("%w: %d frames", ErrTooManyFrames, n)
	}
	frames := make([]Frame, 0, n)
	for i := uint64(0); i < n; i++ {
		end := min((i+1)*chunk, uint64(len(data)))
		frames = append(frames, Frame{
			ID:          id,
			FrameNumber: uint16(i),
			Data:        data[i*chunk : end],
			IsLast:      i == n-1,
		})
	}
	return frames, nil
}

// eofAsUnexpectedMissing converts an io.EOF in the error chain of err into an
// io.ErrUnexpectedEOF. It should be used to convert intermediate io.EOF errors
// in unmarshalling code to achieve idiomatic error behavior.
// Other errors are passed through unchanged.
func eofAsUnexpectedMissing(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("fully missing: %w", io.ErrUnexpectedEOF)
	}
	return err
}
