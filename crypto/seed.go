package crypto

import (
	"crypto/rand"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// GenerateRandomness draws 32 random bytes and returns the value plus
// its keccak commitment. The commitment is published alongside each
// delivery so players can audit that the value existed before use.
func GenerateRandomness() (value common.Hash, commitment common.Hash) {
	bytes := make([]byte, 32)
	rand.Read(bytes)

	value = common.BytesToHash(bytes)
	commitment = ethcrypto.Keccak256Hash(value.Bytes())

	return
}

// VerifyCommitment checks a randomness value against its commitment
func VerifyCommitment(value, commitment common.Hash) bool {
	return ethcrypto.Keccak256Hash(value.Bytes()) == commitment
}
