package contract

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// BankrollContract wraps the on-chain liquidity reserve. Stakes are
// deposited into it at acceptance time and wins are paid out of it by
// the house key.
type BankrollContract struct {
	Client      *ethclient.Client
	Contract    *bind.BoundContract
	ABI         abi.ABI
	Address     common.Address
	ChainID     int64
	PrivateKey  *ecdsa.PrivateKey
	FromAddress common.Address
}

// ABIFile structure
type ABIFile struct {
	ABI json.RawMessage `json:"abi"`
}

// NewBankrollContract creates a reserve client from the environment:
// RPC_URL, CHAIN_ID, BANKROLL_ADDRESS, HOUSE_PRIVATE_KEY.
func NewBankrollContract(rpcURL string, chainID int64, address common.Address) (*BankrollContract, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %v", err)
	}

	// Load ABI from JSON file
	abiBytes, err := os.ReadFile("contract/Bankroll.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read ABI file: %v", err)
	}

	var abiFile ABIFile
	if err := json.Unmarshal(abiBytes, &abiFile); err != nil {
		return nil, fmt.Errorf("failed to parse ABI JSON: %v", err)
	}

	contractABI, err := abi.JSON(strings.NewReader(string(abiFile.ABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %v", err)
	}

	// Load house private key from environment
	privateKeyHex := os.Getenv("HOUSE_PRIVATE_KEY")
	if privateKeyHex == "" {
		return nil, fmt.Errorf("HOUSE_PRIVATE_KEY environment variable not set")
	}
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %v", err)
	}

	fromAddress := crypto.PubkeyToAddress(privateKey.PublicKey)
	contract := bind.NewBoundContract(address, contractABI, client, client, client)

	log.Printf("✅ Bankroll client initialized - Address: %s, House: %s", address.Hex(), fromAddress.Hex())

	return &BankrollContract{
		Client:      client,
		Contract:    contract,
		ABI:         contractABI,
		Address:     address,
		ChainID:     chainID,
		PrivateKey:  privateKey,
		FromAddress: fromAddress,
	}, nil
}

// Balance returns the bankroll's current balance in wei
func (c *BankrollContract) Balance(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	err := c.Contract.Call(&bind.CallOpts{Context: ctx}, &out, "bankroll")
	if err != nil {
		return nil, fmt.Errorf("failed to read bankroll balance: %v", err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected bankroll balance type")
	}
	return balance, nil
}

// ReceiveStake deposits a stake into the bankroll on behalf of the
// participant (payable depositFor call, value = amount)
func (c *BankrollContract) ReceiveStake(ctx context.Context, from common.Address, amount *big.Int) error {
	auth, err := c.transactor(ctx)
	if err != nil {
		return err
	}
	auth.Value = amount

	if err := c.estimateGas(ctx, auth, amount, "depositFor", from); err != nil {
		return err
	}

	tx, err := c.Contract.Transact(auth, "depositFor", from)
	if err != nil {
		log.Printf("❌ depositFor failed: %v", err)
		return err
	}

	log.Printf("📥 depositFor tx sent: %s (player=%s, amount=%s wei)", tx.Hash().Hex(), from.Hex(), amount.String())
	return nil
}

// Pay calls the contract's payPlayer method from the house key
func (c *BankrollContract) Pay(ctx context.Context, to common.Address, amount *big.Int) error {
	if _, ok := c.ABI.Methods["payPlayer"]; !ok {
		return fmt.Errorf("abi does not contain payPlayer")
	}

	auth, err := c.transactor(ctx)
	if err != nil {
		return err
	}
	auth.Value = big.NewInt(0) // non-payable

	if err := c.estimateGas(ctx, auth, nil, "payPlayer", to, amount); err != nil {
		return err
	}

	log.Printf("💸 Calling payPlayer(player=%s, amount=%s wei) with gasLimit=%d",
		to.Hex(), amount.String(), auth.GasLimit)

	tx, err := c.Contract.Transact(auth, "payPlayer", to, amount)
	if err != nil {
		log.Printf("❌ payPlayer failed: %v", err)
		return err
	}

	log.Printf("📤 payPlayer tx sent: %s", tx.Hash().Hex())
	return nil
}

// transactor builds a keyed transactor with fresh nonce and gas price
func (c *BankrollContract) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.PrivateKey, big.NewInt(c.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %v", err)
	}
	auth.Context = ctx

	nonce, err := c.Client.PendingNonceAt(ctx, c.FromAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %v", err)
	}
	auth.Nonce = big.NewInt(int64(nonce))

	gasPrice, err := c.Client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %v", err)
	}
	auth.GasPrice = gasPrice

	return auth, nil
}

// estimateGas packs the call, estimates, and sets the limit +20% buffer
func (c *BankrollContract) estimateGas(ctx context.Context, auth *bind.TransactOpts, value *big.Int, method string, args ...interface{}) error {
	input, err := c.ABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack input: %v", err)
	}

	gasLimit, err := c.Client.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.FromAddress,
		To:    &c.Address,
		Value: value,
		Data:  input,
	})
	if err != nil {
		log.Printf("⚠️ Gas estimation failed, using default: %v", err)
		auth.GasLimit = uint64(200000) // safe default
	} else {
		auth.GasLimit = gasLimit + (gasLimit * 20 / 100) // +20% buffer
	}
	return nil
}

// Close closes the client connection
func (c *BankrollContract) Close() {
	c.Client.Close()
}
