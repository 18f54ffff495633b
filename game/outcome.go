package game

import (
	"encoding/binary"
	"math/big"

	"diceGameServer/config"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeriveOutcome mixes the raw oracle randomness with the participant
// address and the engine's game id, then reduces into [1, 100]:
//
//	drawn = uint(keccak256(randomness ++ participant ++ gameId)) % 100 + 1
//
// The salt keeps two engines (or two participants) sharing one oracle
// from ever seeing correlated outcomes for the same raw randomness.
func DeriveOutcome(randomness common.Hash, participant common.Address, gameID uint64) int {
	var salt [8]byte
	binary.BigEndian.PutUint64(salt[:], gameID)

	mixed := crypto.Keccak256(randomness.Bytes(), participant.Bytes(), salt[:])

	drawn := new(big.Int).SetBytes(mixed)
	drawn.Mod(drawn, big.NewInt(config.DrawModulus))
	return int(drawn.Int64()) + 1
}

// IsWin applies the stored mode to the drawn number. rollOver wins on
// drawn <= chosen; rollUnder wins on drawn >= chosen. Equality pays in
// both modes.
func IsWin(chosenNumber, drawnNumber int, rollOver bool) bool {
	if rollOver {
		return chosenNumber >= drawnNumber
	}
	return chosenNumber <= drawnNumber
}
