package eth

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"github.com/ethereum/go-ethereum/params"
)

// some internal helper constant values
var (
	weiPerGWei = uint256.NewInt(params.GWei)
	weiPerEth  = uint256.NewInt(params.Ether)
)

// ETH is a typed ETH currency integer, expressed in number of wei.
// Methods take and return flat values and never mutate in-place.
type ETH uint256.Int

// GweiToWei converts a possibly fractional gwei amount into wei, truncating sub-wei precision.
func GweiToWei(gwei float64) (ETH, error) {
	if math.IsNaN(gwei) || math.IsInf(gwei, 0) {
		return ETH{}, fmt.Errorf("invalid gwei value: %v", gwei)
	}
	if gwei < 0 {
		return ETH{}, fmt.Errorf("negative gwei value: %v", gwei)
	}

	// convert float GWei value into integer Wei value
	wei, _ := new(big.Float).Mul(
		big.NewFloat(gwei),
		big.NewFloat(params.GWei)).
		Int(nil)

	var out ETH
	if overflow := (*uint256.Int)(&out).SetFromBig(wei); overflow {
		return ETH{}, errors.New("gwei value larger than max uint256")
	}
	return out, nil
}

// GWei turns the given amount of GWei into ETH-typed wei.
func GWei(gwei uint64) ETH {
	var x uint256.Int
	x.SetUint64(gwei)
	x.Mul(&x, weiPerGWei)
	return ETH(x)
}

// WeiU64 turns the given uint64 amount of wei into ETH-typed wei.
func WeiU64(wei uint64) (out ETH) {
	(*uint256.Int)(&out).SetUint64(wei)
	return
}

// CalldataFee returns the fee of spending gas at gasPrice per gas.
func CalldataFee(gas uint64, gasPrice ETH) (ETH, error) {
	out, overflow := gasPrice.MulOverflow(gas)
	if overflow {
		return ETH{}, fmt.Errorf("fee overflow: %d gas at %s", gas, gasPrice)
	}
	return out, nil
}

// String prints the amount with thousands separators and the largest unit that divides it exactly.
func (e ETH) String() string {
	vWei := (*uint256.Int)(&e)
	if vWei.Sign() == 0 {
		return "0 wei"
	}
	var vGWei, remainder uint256.Int
	vGWei.DivMod(vWei, weiPerGWei, &remainder)
	if remainder.Sign() == 0 {
		var vEth uint256.Int
		vEth.DivMod(vWei, weiPerEth, &remainder)
		if remainder.Sign() == 0 {
			return vEth.PrettyDec(',') + " ether"
		}
		return vGWei.PrettyDec(',') + " gwei"
	}
	return vWei.PrettyDec(',') + " wei"
}

// EtherString returns the amount forced in ether units, without unit suffix or trailing zeroes.
func (e ETH) EtherString() string {
	var ethers, remainder uint256.Int
	ethers.DivMod((*uint256.Int)(&e), weiPerEth, &remainder)
	if remainder.Sign() == 0 {
		return ethers.Dec()
	}
	frac := remainder.Dec()
	frac = strings.Repeat("0", 18-len(frac)) + frac
	return ethers.Dec() + "." + strings.TrimRight(frac, "0")
}

// MulOverflow multiplies by the given scalar, and returns the result. No value is mutated.
// This also returns a boolean indicating if the result overflowed.
func (e ETH) MulOverflow(scalar uint64) (out ETH, overflow bool) {
	_, overflow = (*uint256.Int)(&out).MulOverflow((*uint256.Int)(&e), uint256.NewInt(scalar))
	return
}

// IsZero returns if this equals 0.
func (e ETH) IsZero() bool {
	return (*uint256.Int)(&e).IsZero()
}

// ToBig converts to *big.Int, in wei.
func (e ETH) ToBig() *big.Int {
	return (*uint256.Int)(&e).ToBig()
}
