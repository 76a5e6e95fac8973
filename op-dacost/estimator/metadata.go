package estimator

import (
	"fmt"
	"math/rand"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mantlenetworkio/da-cost/op-dacost/flags"
	"github.com/mantlenetworkio/da-cost/op-node/rollup/derive"
	"github.com/mantlenetworkio/da-cost/op-service/sources"
)

// MetadataSource provides the batch header for a fetched block.
type MetadataSource interface {
	Metadata(block *sources.RPCBlock) derive.BlockMetadata
}

// PlaceholderMetadata fills parent and epoch hashes with random bytes.
// The hashes have no relation to any chain, only their size and entropy
// matter for the estimate.
type PlaceholderMetadata struct {
	rng       *rand.Rand
	timestamp uint64
}

// NewPlaceholderMetadata uses rng for the hashes. A non-zero timestamp replaces
// the block's own timestamp.
func NewPlaceholderMetadata(rng *rand.Rand, timestamp uint64) *PlaceholderMetadata {
	return &PlaceholderMetadata{rng: rng, timestamp: timestamp}
}

func (p *PlaceholderMetadata) Metadata(block *sources.RPCBlock) derive.BlockMetadata {
	return derive.BlockMetadata{
		ParentHash: p.hash(),
		EpochNum:   uint64(block.Number),
		EpochHash:  p.hash(),
		Timestamp:  timestampOf(block, p.timestamp),
	}
}

func (p *PlaceholderMetadata) hash() (out common.Hash) {
	p.rng.Read(out[:])
	return
}

// BlockHashMetadata uses the block's parent hash and hash as the batch parent and epoch hash.
type BlockHashMetadata struct {
	timestamp uint64
}

func NewBlockHashMetadata(timestamp uint64) *BlockHashMetadata {
	return &BlockHashMetadata{timestamp: timestamp}
}

func (b *BlockHashMetadata) Metadata(block *sources.RPCBlock) derive.BlockMetadata {
	return derive.BlockMetadata{
		ParentHash: block.ParentHash,
		EpochNum:   uint64(block.Number),
		EpochHash:  block.Hash,
		Timestamp:  timestampOf(block, b.timestamp),
	}
}

func timestampOf(block *sources.RPCBlock, override uint64) uint64 {
	if override != 0 {
		return override
	}
	return uint64(block.Timestamp)
}

// NewMetadataSource returns the source named by kind.
func NewMetadataSource(kind string, rng *rand.Rand, timestamp uint64) (MetadataSource, error) {
	switch kind {
	case flags.MetadataPlaceholder:
		return NewPlaceholderMetadata(rng, timestamp), nil
	case flags.MetadataBlock:
		return NewBlockHashMetadata(timestamp), nil
	default:
		return nil, fmt.Errorf("unknown metadata source: %q", kind)
	}
}
