package estimator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// WriteDumps writes every batch and the channel payload to dir as 0x-prefixed hex,
// one file each: batch_<number>.hex and channel.hex.
func WriteDumps(dir string, r *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dump dir: %w", err)
	}
	for i := range r.Batches {
		b := &r.Batches[i]
		if err := writeHex(filepath.Join(dir, fmt.Sprintf("batch_%d.hex", b.Number)), b.Data()); err != nil {
			return err
		}
	}
	return writeHex(filepath.Join(dir, "channel.hex"), r.Channel.Data())
}

func writeHex(path string, data []byte) error {
	if err := os.WriteFile(path, []byte(hexutil.Encode(data)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
