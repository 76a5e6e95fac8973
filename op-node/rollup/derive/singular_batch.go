package derive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
)

// BlockMetadata is the header part of a batch: the L2 parent it builds on,
// the L1 epoch it belongs to and its timestamp.
type BlockMetadata struct {
	ParentHash common.Hash
	EpochNum   uint64
	EpochHash  common.Hash
	Timestamp  uint64
}

// SingularBatch is an implementation of Batch interface, containing the input to build one L2 block.
// Field order defines the RLP list order.
type SingularBatch struct {
	ParentHash   common.Hash
	EpochNum     uint64
	EpochHash    common.Hash
	Timestamp    uint64
	Transactions []hexutil.Bytes
}

func NewSingularBatch(meta BlockMetadata, txs []hexutil.Bytes) *SingularBatch {
	return &SingularBatch{
		ParentHash:   meta.ParentHash,
		EpochNum:     meta.EpochNum,
		EpochHash:    meta.EpochHash,
		Timestamp:    meta.Timestamp,
		Transactions: txs,
	}
}

// Metadata returns the header fields of the batch.
func (b *SingularBatch) Metadata() BlockMetadata {
	return BlockMetadata{
		ParentHash: b.ParentHash,
		EpochNum:   b.EpochNum,
		EpochHash:  b.EpochHash,
		Timestamp:  b.Timestamp,
	}
}

func (b *SingularBatch) validate() error {
	for i, tx := range b.Transactions {
		if len(tx) == 0 {
			return fmt.Errorf("%w: transaction %d is empty", ErrEncoding, i)
		}
	}
	return nil
}

// EncodeBatch writes the version byte followed by the RLP encoding of the batch.
func (b *SingularBatch) EncodeBatch(w io.Writer) error {
	if err := b.validate(); err != nil {
		return err
	}
	if _, err := w.Write([]byte{SingularBatchType}); err != nil {
		return fmt.Errorf("failed to write batch type: %w", err)
	}
	if err := rlp.Encode(w, b); err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return nil
}

func (b *SingularBatch) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.EncodeBatch(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LogContext creates a new log context that contains information of the batch
func (b *SingularBatch) LogContext(log log.Logger) log.Logger {
	return log.New(
		"parent_hash", b.ParentHash,
		"epoch_num", b.EpochNum,
		"epoch_hash", b.EpochHash,
		"timestamp", b.Timestamp,
		"txs", len(b.Transactions),
	)
}

// CreateBatch encodes a batch from block metadata and normalized transactions.
func CreateBatch(meta BlockMetadata, txs []hexutil.Bytes) ([]byte, error) {
	return NewSingularBatch(meta, txs).MarshalBinary()
}

// UnmarshalSingularBatch decodes a versioned batch. The whole input must be consumed.
// Used to verify CreateBatch output; the estimator itself only encodes.
func UnmarshalSingularBatch(data []byte) (*SingularBatch, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrEncoding)
	}
	if data[0] != SingularBatchType {
		return nil, fmt.Errorf("%w: unrecognized batch type %d", ErrEncoding, data[0])
	}
	var b SingularBatch
	if err := rlp.DecodeBytes(data[1:], &b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return &b, nil
}
