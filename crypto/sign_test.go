package crypto

import (
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestDeliverySignatureRoundTrip(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := ethcrypto.PubkeyToAddress(key.PublicKey)

	requestID := ethcrypto.Keccak256Hash([]byte("request"))
	randomness := ethcrypto.Keccak256Hash([]byte("randomness"))

	sig, err := SignDelivery(key, requestID, randomness)
	if err != nil {
		t.Fatalf("SignDelivery failed: %v", err)
	}

	recovered, err := RecoverDeliverer(requestID, randomness, sig)
	if err != nil {
		t.Fatalf("RecoverDeliverer failed: %v", err)
	}
	if recovered != signer {
		t.Errorf("recovered %s, want %s", recovered.Hex(), signer.Hex())
	}
}

func TestRecoverDelivererRejectsTampering(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := ethcrypto.PubkeyToAddress(key.PublicKey)

	requestID := ethcrypto.Keccak256Hash([]byte("request"))
	randomness := ethcrypto.Keccak256Hash([]byte("randomness"))

	sig, err := SignDelivery(key, requestID, randomness)
	if err != nil {
		t.Fatalf("SignDelivery failed: %v", err)
	}

	// Substituted randomness must not recover to the signer
	other := ethcrypto.Keccak256Hash([]byte("other randomness"))
	if recovered, err := RecoverDeliverer(requestID, other, sig); err == nil && recovered == signer {
		t.Error("signature accepted for substituted randomness")
	}

	// Signature bound to another request must not recover to the signer
	otherRequest := ethcrypto.Keccak256Hash([]byte("other request"))
	if recovered, err := RecoverDeliverer(otherRequest, randomness, sig); err == nil && recovered == signer {
		t.Error("signature accepted for substituted request id")
	}

	// Truncated signatures fail outright
	if _, err := RecoverDeliverer(requestID, randomness, sig[:32]); err == nil {
		t.Error("truncated signature accepted")
	}
}
