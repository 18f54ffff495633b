package crypto

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// DeliveryDigest is the message a randomness delivery is signed over:
// keccak256(requestId || randomness). Binding the signature to both
// fields means a captured signature cannot be replayed against another
// request or with substituted randomness.
func DeliveryDigest(requestID, randomness common.Hash) common.Hash {
	return ethcrypto.Keccak256Hash(requestID.Bytes(), randomness.Bytes())
}

// SignDelivery produces the 65-byte [R || S || V] signature the
// coordinator attaches to each delivery
func SignDelivery(key *ecdsa.PrivateKey, requestID, randomness common.Hash) ([]byte, error) {
	return ethcrypto.Sign(DeliveryDigest(requestID, randomness).Bytes(), key)
}

// RecoverDeliverer recovers the signer address from a delivery
// signature. The caller identity is derived from the signature, never
// taken from the payload.
func RecoverDeliverer(requestID, randomness common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != ethcrypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", ethcrypto.SignatureLength, len(sig))
	}

	pub, err := ethcrypto.SigToPub(DeliveryDigest(requestID, randomness).Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("signature recovery: %w", err)
	}

	return ethcrypto.PubkeyToAddress(*pub), nil
}
