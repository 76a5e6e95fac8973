package sources

import (
	"encoding/json"
	"errors"
	"math/big"
	"math/rand"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mantlenetworkio/da-cost/op-service/testutils"
)

// rpcJSON renders tx the way a node returns it inside a block, including query artifacts.
func rpcJSON(t *testing.T, rng *rand.Rand, tx *types.Transaction) []byte {
	data, err := tx.MarshalJSON()
	require.NoError(t, err)
	var obj map[string]any
	require.NoError(t, json.Unmarshal(data, &obj))
	obj["blockHash"] = testutils.RandomHash(rng)
	obj["blockNumber"] = "0xc7e3e0"
	obj["transactionIndex"] = "0x3"
	obj["from"] = testutils.RandomAddress(rng)
	if tx.Type() != types.LegacyTxType && tx.Type() != types.AccessListTxType {
		// effective gas price, only meaningful for the including block
		obj["gasPrice"] = "0x3b9aca00"
	}
	out, err := json.Marshal(obj)
	require.NoError(t, err)
	return out
}

func decodeRPCTransaction(t *testing.T, data []byte) *RPCTransaction {
	var tx RPCTransaction
	require.NoError(t, json.Unmarshal(data, &tx))
	return &tx
}

func testTransactions(t *testing.T, rng *rand.Rand) map[string]*types.Transaction {
	key := testutils.RandomKey(rng)
	chainID := big.NewInt(5000)
	to := testutils.RandomAddress(rng)
	accessList := types.AccessList{
		{Address: testutils.RandomAddress(rng), StorageKeys: []common.Hash{testutils.RandomHash(rng), testutils.RandomHash(rng)}},
	}

	sign := func(signer types.Signer, inner types.TxData) *types.Transaction {
		tx, err := types.SignNewTx(key, signer, inner)
		require.NoError(t, err)
		return tx
	}
	auth, err := types.SignSetCode(key, types.SetCodeAuthorization{
		ChainID: *uint256.MustFromBig(chainID),
		Address: testutils.RandomAddress(rng),
		Nonce:   7,
	})
	require.NoError(t, err)
	latest := types.LatestSignerForChainID(chainID)

	return map[string]*types.Transaction{
		"legacy unprotected create": sign(types.HomesteadSigner{}, &types.LegacyTx{
			Nonce:    0,
			GasPrice: big.NewInt(20_000_000_000),
			Gas:      1_000_000,
			Data:     testutils.RandomData(rng, 200),
		}),
		"legacy eip155": sign(types.NewEIP155Signer(big.NewInt(1)), &types.LegacyTx{
			Nonce:    12,
			GasPrice: big.NewInt(1_000_000_000),
			Gas:      21000,
			To:       &to,
			Value:    big.NewInt(1e18),
		}),
		"legacy eip155 large chain id": sign(types.NewEIP155Signer(chainID), &types.LegacyTx{
			Nonce:    3,
			GasPrice: big.NewInt(50),
			Gas:      60000,
			To:       &to,
			Data:     []byte{0xa9, 0x05, 0x9c, 0xbb, 0x00, 0x00},
		}),
		"access list": sign(latest, &types.AccessListTx{
			ChainID:    chainID,
			Nonce:      1,
			GasPrice:   big.NewInt(7),
			Gas:        90000,
			To:         &to,
			Value:      big.NewInt(0),
			Data:       testutils.RandomData(rng, 68),
			AccessList: accessList,
		}),
		"dynamic fee": sign(latest, &types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     2,
			GasTipCap: big.NewInt(1_000_000),
			GasFeeCap: big.NewInt(30_000_000_000),
			Gas:       150000,
			To:        &to,
			Value:     big.NewInt(12345),
			Data:      testutils.RandomData(rng, 36),
		}),
		"dynamic fee with access list": sign(latest, &types.DynamicFeeTx{
			ChainID:    chainID,
			Nonce:      4,
			GasTipCap:  big.NewInt(2),
			GasFeeCap:  big.NewInt(3),
			Gas:        50000,
			To:         &to,
			Value:      big.NewInt(0),
			AccessList: accessList,
		}),
		"blob": sign(latest, &types.BlobTx{
			ChainID:    uint256.MustFromBig(chainID),
			Nonce:      5,
			GasTipCap:  uint256.NewInt(1),
			GasFeeCap:  uint256.NewInt(100),
			Gas:        21000,
			To:         to,
			Value:      uint256.NewInt(0),
			BlobFeeCap: uint256.NewInt(3),
			BlobHashes: []common.Hash{{0x01, 0xaa}, {0x01, 0xbb}},
		}),
		"set code": sign(latest, &types.SetCodeTx{
			ChainID:   uint256.MustFromBig(chainID),
			Nonce:     6,
			GasTipCap: uint256.NewInt(1),
			GasFeeCap: uint256.NewInt(100),
			Gas:       80000,
			To:        to,
			Value:     uint256.NewInt(0),
			AuthList:  []types.SetCodeAuthorization{auth},
		}),
	}
}

func TestRawTransactionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for name, tx := range testTransactions(t, rng) {
		t.Run(name, func(t *testing.T) {
			expected, err := tx.MarshalBinary()
			require.NoError(t, err)

			rpcTx := decodeRPCTransaction(t, rpcJSON(t, rng, tx))
			raw, err := rpcTx.RawTransaction()
			require.NoError(t, err)
			require.Equal(t, hexutil.Bytes(expected), raw)

			signed, err := rpcTx.SignedTransaction()
			require.NoError(t, err)
			require.Equal(t, tx.Hash(), signed.Hash())
		})
	}
}

func TestRawTransactionWithoutHash(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tx := testTransactions(t, rng)["dynamic fee"]
	rpcTx := decodeRPCTransaction(t, rpcJSON(t, rng, tx))
	rpcTx.Hash = nil
	raw, err := rpcTx.RawTransaction()
	require.NoError(t, err)
	expected, err := tx.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, hexutil.Bytes(expected), raw)
}

func TestRawTransactionMalformed(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	txs := testTransactions(t, rng)
	base := func(name string) *RPCTransaction {
		return decodeRPCTransaction(t, rpcJSON(t, rng, txs[name]))
	}

	tests := []struct {
		name   string
		mutate func() *RPCTransaction
	}{
		{"missing r", func() *RPCTransaction {
			tx := base("dynamic fee")
			tx.R = nil
			return tx
		}},
		{"missing v and yParity", func() *RPCTransaction {
			tx := base("access list")
			tx.V, tx.YParity = nil, nil
			return tx
		}},
		{"missing chain id", func() *RPCTransaction {
			tx := base("dynamic fee")
			tx.ChainID = nil
			return tx
		}},
		{"missing nonce", func() *RPCTransaction {
			tx := base("legacy eip155")
			tx.Nonce = nil
			return tx
		}},
		{"deposit type", func() *RPCTransaction {
			tx := base("dynamic fee")
			typ := hexutil.Uint64(0x7e)
			tx.Type = &typ
			return tx
		}},
		{"unknown type", func() *RPCTransaction {
			tx := base("dynamic fee")
			typ := hexutil.Uint64(0x05)
			tx.Type = &typ
			return tx
		}},
		{"blob without recipient", func() *RPCTransaction {
			tx := base("blob")
			tx.To = nil
			return tx
		}},
		{"set code without recipient", func() *RPCTransaction {
			tx := base("set code")
			tx.To = nil
			return tx
		}},
		{"yParity disagrees with v", func() *RPCTransaction {
			tx := base("dynamic fee")
			flipped := hexutil.Uint64(1 - uint64(*tx.YParity))
			tx.YParity = &flipped
			return tx
		}},
		{"invalid y parity", func() *RPCTransaction {
			tx := base("dynamic fee")
			tx.YParity = nil
			tx.V = (*hexutil.Big)(big.NewInt(27))
			return tx
		}},
		{"invalid legacy v", func() *RPCTransaction {
			tx := base("legacy eip155")
			tx.V = (*hexutil.Big)(big.NewInt(29))
			return tx
		}},
		{"r too large", func() *RPCTransaction {
			tx := base("legacy eip155")
			tx.R = (*hexutil.Big)(new(big.Int).Lsh(big.NewInt(1), 256))
			return tx
		}},
		{"hash mismatch", func() *RPCTransaction {
			tx := base("legacy unprotected create")
			h := testutils.RandomHash(rng)
			tx.Hash = &h
			return tx
		}},
		{"altered field", func() *RPCTransaction {
			tx := base("dynamic fee")
			gas := *tx.Gas + 1
			tx.Gas = &gas
			return tx
		}},
		{"blob fee overflow", func() *RPCTransaction {
			tx := base("blob")
			tx.MaxFeePerBlobGas = (*hexutil.Big)(new(big.Int).Lsh(big.NewInt(1), 300))
			return tx
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.mutate().RawTransaction()
			require.ErrorIs(t, err, ErrMalformedTransaction)
		})
	}
}

func TestNormalizeBlock(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	txs := testTransactions(t, rng)
	names := []string{"legacy eip155", "access list", "dynamic fee", "blob", "set code"}

	block := &RPCBlock{Number: 13100000}
	var expected []hexutil.Bytes
	for _, name := range names {
		block.Transactions = append(block.Transactions, decodeRPCTransaction(t, rpcJSON(t, rng, txs[name])))
		raw, err := txs[name].MarshalBinary()
		require.NoError(t, err)
		expected = append(expected, raw)
	}
	out, err := NormalizeBlock(block)
	require.NoError(t, err)
	require.Equal(t, expected, out)

	empty, err := NormalizeBlock(&RPCBlock{})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestNormalizeBlockAggregatesErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	txs := testTransactions(t, rng)
	good := decodeRPCTransaction(t, rpcJSON(t, rng, txs["dynamic fee"]))
	bad := decodeRPCTransaction(t, rpcJSON(t, rng, txs["access list"]))
	bad.S = nil

	block := &RPCBlock{Number: 9, Transactions: []*RPCTransaction{good, bad, nil}}
	_, err := NormalizeBlock(block)
	require.ErrorIs(t, err, ErrMalformedTransaction)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)
	require.ErrorContains(t, err, "block 9 tx 1")
	require.ErrorContains(t, err, "block 9 tx 2")
}
