package game

import (
	"math/big"
	"testing"
)

func TestMultiplierTable(t *testing.T) {
	tests := []struct {
		name       string
		number     int
		rollOver   bool
		wantChance int
		wantMult   uint64
	}{
		{"fifty_rollover", 50, true, 50, 1960},
		{"one_rollover", 1, true, 1, 98000},
		{"ninetynine_rollover", 99, true, 99, 989},
		{"fifty_rollunder", 50, false, 50, 1960},
		{"one_rollunder", 1, false, 99, 989},
		{"ninetynine_rollunder", 99, false, 1, 98000},
		{"thirtythree_rollover", 33, true, 33, 2969}, // floor(98000/33)
		{"seventy_rollunder", 70, false, 30, 3266},   // floor(98000/30)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WinChance(tt.number, tt.rollOver); got != tt.wantChance {
				t.Errorf("WinChance(%d, %t) = %d, want %d", tt.number, tt.rollOver, got, tt.wantChance)
			}
			if got := Multiplier(tt.number, tt.rollOver); got != tt.wantMult {
				t.Errorf("Multiplier(%d, %t) = %d, want %d", tt.number, tt.rollOver, got, tt.wantMult)
			}
		})
	}
}

func TestExpectedWin(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		multiplier uint64
		want       int64
	}{
		{"even_money_ish", 100, 1960, 196},
		{"floor_truncation", 101, 1960, 197},  // floor(197960/1000)
		{"max_multiplier", 10, 98000, 980},
		{"one_wei", 1, 1960, 1},
		{"sub_scale", 1, 989, 0}, // floor(989/1000)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpectedWin(big.NewInt(tt.amount), tt.multiplier)
			if got.Int64() != tt.want {
				t.Errorf("ExpectedWin(%d, %d) = %s, want %d", tt.amount, tt.multiplier, got.String(), tt.want)
			}
		})
	}

	// Wei-sized stakes must not overflow: 100 MNT at 98x
	amount, _ := new(big.Int).SetString("100000000000000000000", 10)
	want, _ := new(big.Int).SetString("9800000000000000000000", 10)
	if got := ExpectedWin(amount, 98000); got.Cmp(want) != 0 {
		t.Errorf("ExpectedWin(100e18, 98000) = %s, want %s", got.String(), want.String())
	}
}

func TestValidNumber(t *testing.T) {
	for _, number := range []int{1, 2, 50, 98, 99} {
		if !ValidNumber(number) {
			t.Errorf("ValidNumber(%d) = false, want true", number)
		}
	}
	for _, number := range []int{-1, 0, 100, 150} {
		if ValidNumber(number) {
			t.Errorf("ValidNumber(%d) = true, want false", number)
		}
	}
}
