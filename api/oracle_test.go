package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"diceGameServer/contract"
	dicecrypto "diceGameServer/crypto"
	"diceGameServer/game"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

type stubOracle struct {
	identity  common.Address
	requestID common.Hash
}

func (o *stubOracle) RequestRandomness(ctx context.Context) (common.Hash, error) {
	return o.requestID, nil
}

func (o *stubOracle) Identity() common.Address {
	return o.identity
}

func postCallback(t *testing.T, req OracleCallbackRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal callback: %v", err)
	}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/oracle/callback", bytes.NewReader(body))
	HandleOracleCallback(w, r)
	return w
}

func TestOracleCallbackSignatureAuth(t *testing.T) {
	oracleKey, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate oracle key: %v", err)
	}
	oracleAddr := ethcrypto.PubkeyToAddress(oracleKey.PublicKey)

	player := common.HexToAddress("0xAAAA00000000000000000000000000000000AAAA")
	requestID := ethcrypto.Keccak256Hash([]byte("callback-test-request"))

	e := game.NewEngine(game.EngineConfig{
		Reserve:  contract.NewLocalBankroll(big.NewInt(1_000_000)),
		Oracle:   &stubOracle{identity: oracleAddr, requestID: requestID},
		Params:   &contract.StaticParams{MinStake: big.NewInt(1)},
		Verifier: contract.AcceptAllVerifier{},
		Admin:    common.HexToAddress("0xAD0000000000000000000000000000000000AD00"),
		GameID:   7,
	})
	SetEngine(e)

	if _, err := e.PlaceWager(context.Background(), player, 50, big.NewInt(100), true); err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}

	randomness := ethcrypto.Keccak256Hash([]byte("callback-test-randomness"))

	t.Run("forged_caller_rejected", func(t *testing.T) {
		// A delivery signed by anyone but the oracle must not settle,
		// no matter what randomness the sender picked
		attackerKey, err := ethcrypto.GenerateKey()
		if err != nil {
			t.Fatalf("generate attacker key: %v", err)
		}
		sig, err := dicecrypto.SignDelivery(attackerKey, requestID, randomness)
		if err != nil {
			t.Fatalf("sign delivery: %v", err)
		}

		w := postCallback(t, OracleCallbackRequest{
			RequestID:  requestID.Hex(),
			Randomness: randomness.Hex(),
			Signature:  hexutil.Encode(sig),
		})
		if w.Code != http.StatusForbidden {
			t.Errorf("forged delivery got HTTP %d, want %d", w.Code, http.StatusForbidden)
		}
		record, ok := e.Wager(requestID)
		if !ok || record.Status != game.StatusPending {
			t.Errorf("wager status = %v, want still pending", record.Status)
		}
	})

	t.Run("garbage_signature_rejected", func(t *testing.T) {
		w := postCallback(t, OracleCallbackRequest{
			RequestID:  requestID.Hex(),
			Randomness: randomness.Hex(),
			Signature:  "0xdeadbeef",
		})
		if w.Code != http.StatusForbidden {
			t.Errorf("garbage signature got HTTP %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("oracle_signature_settles", func(t *testing.T) {
		sig, err := dicecrypto.SignDelivery(oracleKey, requestID, randomness)
		if err != nil {
			t.Fatalf("sign delivery: %v", err)
		}

		w := postCallback(t, OracleCallbackRequest{
			RequestID:  requestID.Hex(),
			Randomness: randomness.Hex(),
			Signature:  hexutil.Encode(sig),
		})
		if w.Code != http.StatusOK {
			t.Fatalf("signed delivery got HTTP %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}
		record, ok := e.Wager(requestID)
		if !ok || record.Status != game.StatusResolved {
			t.Errorf("wager status = %v, want resolved", record.Status)
		}
	})

	t.Run("replay_rejected", func(t *testing.T) {
		sig, err := dicecrypto.SignDelivery(oracleKey, requestID, randomness)
		if err != nil {
			t.Fatalf("sign delivery: %v", err)
		}

		w := postCallback(t, OracleCallbackRequest{
			RequestID:  requestID.Hex(),
			Randomness: randomness.Hex(),
			Signature:  hexutil.Encode(sig),
		})
		if w.Code != http.StatusConflict {
			t.Errorf("replayed delivery got HTTP %d, want %d", w.Code, http.StatusConflict)
		}
	})
}
