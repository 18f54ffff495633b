package game

import (
	"math/big"

	"diceGameServer/config"
)

// WinChance returns the integer win probability (in percent) for a pick.
// rollOver wagers win on drawn <= chosen, so the chance is the chosen
// number itself; rollUnder wagers win on drawn >= chosen.
func WinChance(chosenNumber int, rollOver bool) int {
	if rollOver {
		return chosenNumber
	}
	return config.DrawModulus - chosenNumber
}

// Multiplier computes the fixed-point payout multiplier (scale 1000):
//
//	multiplier = floor(98000 / winChance)
//
// number=50 rollOver → 1960 (1.96x); number=1 rollOver → 98000 (98x).
func Multiplier(chosenNumber int, rollOver bool) uint64 {
	return uint64(config.HousePayoutNumerator / WinChance(chosenNumber, rollOver))
}

// ExpectedWin is the exact amount paid on a win, scale-corrected:
//
//	expectedWin = floor(multiplier * amount / 1000)
//
// All math stays in big.Int so wei-sized stakes never overflow.
func ExpectedWin(amount *big.Int, multiplier uint64) *big.Int {
	win := new(big.Int).Mul(amount, new(big.Int).SetUint64(multiplier))
	return win.Div(win, config.MultiplierScaleBig)
}

// ValidNumber reports whether a pick is strictly between 0 and 100
func ValidNumber(chosenNumber int) bool {
	return chosenNumber >= config.MinChosenNumber && chosenNumber <= config.MaxChosenNumber
}
