package testutils

import (
	"crypto/ecdsa"
	"math/big"
	"math/rand"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func RandomBool(rng *rand.Rand) bool {
	return rng.Intn(2) == 1
}

func RandomHash(rng *rand.Rand) (out common.Hash) {
	rng.Read(out[:])
	return
}

func RandomAddress(rng *rand.Rand) (out common.Address) {
	rng.Read(out[:])
	return
}

func RandomData(rng *rand.Rand, size int) []byte {
	out := make([]byte, size)
	rng.Read(out)
	return out
}

func RandomBigInt(rng *rand.Rand, bits uint) *big.Int {
	return new(big.Int).Rand(rng, new(big.Int).Lsh(big.NewInt(1), bits))
}

// RandomKey returns a deterministic secp256k1 key drawn from rng.
func RandomKey(rng *rand.Rand) *ecdsa.PrivateKey {
	for {
		key, err := crypto.ToECDSA(RandomData(rng, 32))
		if err == nil {
			return key
		}
	}
}
