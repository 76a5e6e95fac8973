package sources

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/go-multierror"
	"github.com/holiman/uint256"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrMalformedTransaction = errors.New("malformed transaction")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedTransaction, fmt.Sprintf(format, args...))
}

// RawTransaction rebuilds the signed EIP-2718 envelope of the transaction.
func (tx *RPCTransaction) RawTransaction() (hexutil.Bytes, error) {
	signed, err := tx.SignedTransaction()
	if err != nil {
		return nil, err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTransaction, err)
	}
	return raw, nil
}

// SignedTransaction builds the transaction from its canonical fields only and attaches the signature.
// If the node reported a hash, the result must hash to it.
func (tx *RPCTransaction) SignedTransaction() (*types.Transaction, error) {
	inner, err := tx.txData()
	if err != nil {
		return nil, err
	}
	signer, sig, err := tx.signature()
	if err != nil {
		return nil, err
	}
	signed, err := types.NewTx(inner).WithSignature(signer, sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTransaction, err)
	}
	if tx.Hash != nil && signed.Hash() != *tx.Hash {
		return nil, malformed("rebuilt hash %s does not match %s", signed.Hash(), *tx.Hash)
	}
	return signed, nil
}

func (tx *RPCTransaction) txType() uint64 {
	if tx.Type == nil {
		return types.LegacyTxType
	}
	return uint64(*tx.Type)
}

func (tx *RPCTransaction) txData() (types.TxData, error) {
	if tx.Nonce == nil || tx.Gas == nil {
		return nil, malformed("missing nonce or gas")
	}
	typ := tx.txType()
	if typ != types.LegacyTxType && tx.ChainID == nil {
		return nil, malformed("missing chainId on type %d transaction", typ)
	}
	switch typ {
	case types.LegacyTxType:
		return &types.LegacyTx{
			Nonce:    uint64(*tx.Nonce),
			GasPrice: bigOrZero(tx.GasPrice),
			Gas:      uint64(*tx.Gas),
			To:       tx.To,
			Value:    bigOrZero(tx.Value),
			Data:     tx.input(),
		}, nil
	case types.AccessListTxType:
		return &types.AccessListTx{
			ChainID:    tx.ChainID.ToInt(),
			Nonce:      uint64(*tx.Nonce),
			GasPrice:   bigOrZero(tx.GasPrice),
			Gas:        uint64(*tx.Gas),
			To:         tx.To,
			Value:      bigOrZero(tx.Value),
			Data:       tx.input(),
			AccessList: tx.accessList(),
		}, nil
	case types.DynamicFeeTxType:
		return &types.DynamicFeeTx{
			ChainID:    tx.ChainID.ToInt(),
			Nonce:      uint64(*tx.Nonce),
			GasTipCap:  bigOrZero(tx.MaxPriorityFeePerGas),
			GasFeeCap:  bigOrZero(tx.MaxFeePerGas),
			Gas:        uint64(*tx.Gas),
			To:         tx.To,
			Value:      bigOrZero(tx.Value),
			Data:       tx.input(),
			AccessList: tx.accessList(),
		}, nil
	case types.BlobTxType:
		if tx.To == nil {
			return nil, malformed("blob transaction without recipient")
		}
		fields, err := tx.uint256Fields(tx.ChainID, tx.MaxPriorityFeePerGas, tx.MaxFeePerGas, tx.Value, tx.MaxFeePerBlobGas)
		if err != nil {
			return nil, err
		}
		return &types.BlobTx{
			ChainID:    fields[0],
			Nonce:      uint64(*tx.Nonce),
			GasTipCap:  fields[1],
			GasFeeCap:  fields[2],
			Gas:        uint64(*tx.Gas),
			To:         *tx.To,
			Value:      fields[3],
			Data:       tx.input(),
			AccessList: tx.accessList(),
			BlobFeeCap: fields[4],
			BlobHashes: tx.BlobVersionedHashes,
		}, nil
	case types.SetCodeTxType:
		if tx.To == nil {
			return nil, malformed("set code transaction without recipient")
		}
		fields, err := tx.uint256Fields(tx.ChainID, tx.MaxPriorityFeePerGas, tx.MaxFeePerGas, tx.Value)
		if err != nil {
			return nil, err
		}
		return &types.SetCodeTx{
			ChainID:    fields[0],
			Nonce:      uint64(*tx.Nonce),
			GasTipCap:  fields[1],
			GasFeeCap:  fields[2],
			Gas:        uint64(*tx.Gas),
			To:         *tx.To,
			Value:      fields[3],
			Data:       tx.input(),
			AccessList: tx.accessList(),
			AuthList:   tx.AuthorizationList,
		}, nil
	default:
		return nil, malformed("unsupported transaction type %d", typ)
	}
}

// signature joins r, s and the recovery id into the 65-byte [R || S || V] form and
// returns the signer that maps it back onto the envelope's v.
func (tx *RPCTransaction) signature() (types.Signer, []byte, error) {
	if tx.R == nil || tx.S == nil || (tx.V == nil && tx.YParity == nil) {
		return nil, nil, malformed("missing signature values")
	}
	var (
		signer types.Signer
		recID  uint64
	)
	if tx.txType() == types.LegacyTxType {
		if tx.V == nil {
			return nil, nil, malformed("missing v on legacy transaction")
		}
		v := tx.V.ToInt()
		switch {
		case v.IsUint64() && (v.Uint64() == 27 || v.Uint64() == 28):
			signer = types.HomesteadSigner{}
			recID = v.Uint64() - 27
		case v.Cmp(big.NewInt(35)) >= 0:
			// v = chainID*2 + 35 + recid
			rest := new(big.Int).Sub(v, big.NewInt(35))
			recID = uint64(rest.Bit(0))
			signer = types.NewEIP155Signer(rest.Rsh(rest, 1))
		default:
			return nil, nil, malformed("invalid legacy v %s", v)
		}
	} else {
		recID = 2
		if tx.YParity != nil {
			recID = uint64(*tx.YParity)
		} else if tx.V.ToInt().IsUint64() {
			recID = tx.V.ToInt().Uint64()
		}
		if recID > 1 {
			return nil, nil, malformed("invalid y parity")
		}
		if tx.YParity != nil && tx.V != nil && tx.V.ToInt().Cmp(new(big.Int).SetUint64(recID)) != 0 {
			return nil, nil, malformed("yParity %d does not match v %s", recID, tx.V.ToInt())
		}
		signer = types.LatestSignerForChainID(tx.ChainID.ToInt())
	}
	r, s := tx.R.ToInt(), tx.S.ToInt()
	if r.Sign() < 0 || s.Sign() < 0 || r.BitLen() > 256 || s.BitLen() > 256 {
		return nil, nil, malformed("signature values out of range")
	}
	sig := make([]byte, crypto.SignatureLength)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[crypto.RecoveryIDOffset] = byte(recID)
	return signer, sig, nil
}

func (tx *RPCTransaction) input() []byte {
	if tx.Input == nil {
		return nil
	}
	return *tx.Input
}

func (tx *RPCTransaction) accessList() types.AccessList {
	if tx.AccessList == nil {
		return nil
	}
	return *tx.AccessList
}

func (tx *RPCTransaction) uint256Fields(values ...*hexutil.Big) ([]*uint256.Int, error) {
	out := make([]*uint256.Int, len(values))
	for i, v := range values {
		u, overflow := uint256.FromBig(bigOrZero(v))
		if overflow {
			return nil, malformed("value %s does not fit 256 bits", v)
		}
		out[i] = u
	}
	return out, nil
}

func bigOrZero(v *hexutil.Big) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToInt()
}

// NormalizeBlock rebuilds the raw envelopes of all transactions of a block, in block order.
// Every malformed transaction is reported in the returned error.
func NormalizeBlock(block *RPCBlock) ([]hexutil.Bytes, error) {
	var result *multierror.Error
	txs := make([]hexutil.Bytes, 0, len(block.Transactions))
	for i, tx := range block.Transactions {
		if tx == nil {
			result = multierror.Append(result, malformed("block %d tx %d: not a transaction object", uint64(block.Number), i))
			continue
		}
		raw, err := tx.RawTransaction()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("block %d tx %d %s: %w", uint64(block.Number), i, txHash(tx), err))
			continue
		}
		txs = append(txs, raw)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return txs, nil
}

func txHash(tx *RPCTransaction) string {
	if tx.Hash == nil {
		return "(no hash)"
	}
	return tx.Hash.String()
}
