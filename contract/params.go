package contract

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// minBet is the only method the engine consumes from the registry
const paramsABIJSON = `[{"inputs":[],"name":"minBet","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

// ParamsContract reads the current minimum stake from the on-chain
// parameter registry.
type ParamsContract struct {
	Client   *ethclient.Client
	Contract *bind.BoundContract
	address  common.Address
}

// NewParamsContract creates a registry client for the given address
func NewParamsContract(client *ethclient.Client, address common.Address) (*ParamsContract, error) {
	paramsABI, err := abi.JSON(strings.NewReader(paramsABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse params ABI: %v", err)
	}

	contract := bind.NewBoundContract(address, paramsABI, client, client, client)

	log.Printf("✅ Parameter registry client initialized - Address: %s", address.Hex())

	return &ParamsContract{
		Client:   client,
		Contract: contract,
		address:  address,
	}, nil
}

// MinimumStake returns the registry's current minimum bet in wei
func (p *ParamsContract) MinimumStake(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	err := p.Contract.Call(&bind.CallOpts{Context: ctx}, &out, "minBet")
	if err != nil {
		return nil, fmt.Errorf("failed to read minBet: %v", err)
	}
	minBet, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected minBet type")
	}
	return minBet, nil
}

// Address returns the registry address
func (p *ParamsContract) Address() common.Address {
	return p.address
}

/* =========================
   ENDPOINT VERIFICATION
========================= */

// CodeVerifier checks whether an address carries contract code. A plain
// account has no code and cannot serve minimum-stake reads.
type CodeVerifier struct {
	Client *ethclient.Client
}

// IsContract reports whether the address has executable code behind it
func (v *CodeVerifier) IsContract(ctx context.Context, addr common.Address) (bool, error) {
	code, err := v.Client.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, fmt.Errorf("failed to read code at %s: %v", addr.Hex(), err)
	}
	return len(code) > 0, nil
}
