package cost

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
)

const (
	ZeroByteGas    = params.TxDataZeroGas
	NonZeroByteGas = params.TxDataNonZeroGasEIP2028
)

// CountBytes returns the number of zero and non-zero bytes of data.
func CountBytes(data []byte) (zeroes, ones uint64) {
	cd := types.NewRollupCostData(data)
	return cd.Zeroes, cd.Ones
}

// CalldataGas prices data as L1 transaction calldata.
func CalldataGas(data []byte) uint64 {
	zeroes, ones := CountBytes(data)
	return zeroes*ZeroByteGas + ones*NonZeroByteGas
}

// CalldataGasHex prices 0x-prefixed hex calldata.
func CalldataGasHex(s string) (uint64, error) {
	data, err := hexutil.Decode(s)
	if err != nil {
		return 0, fmt.Errorf("invalid calldata hex: %w", err)
	}
	return CalldataGas(data), nil
}
