package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"go-payments.backend/internal/domain/entities"
)

const erc20TransferFromABI = `[{
	"name":"transferFrom",
	"type":"function",
	"stateMutability":"nonpayable",
	"inputs":[
		{"name":"from","type":"address"},
		{"name":"to","type":"address"},
		{"name":"value","type":"uint256"}
	],
	"outputs":[{"type":"bool"}]
}]`

// executeBySenderABI is the smart-account entry point that runs a call
// bundle from the account's own address in one transaction.
const executeBySenderABI = `[{
	"name":"executeBySender",
	"type":"function",
	"stateMutability":"payable",
	"inputs":[{
		"name":"calls",
		"type":"tuple[]",
		"components":[
			{"name":"to","type":"address"},
			{"name":"value","type":"uint256"},
			{"name":"data","type":"bytes"}
		]
	}],
	"outputs":[]
}]`

var (
	transferFromABI = mustABI(erc20TransferFromABI)
	executeABI      = mustABI(executeBySenderABI)
)

func mustABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Executor signs and submits pull-payment transactions from the operator
// account that scheduled and recurring templates approved as spender.
// Clients are dialed lazily per chain and cached.
type Executor struct {
	key     *ecdsa.PrivateKey
	address common.Address
	rpcURLs map[uint64]string

	mu      sync.Mutex
	clients map[uint64]*ethclient.Client
}

// NewExecutor creates an executor from a hex private key and a chain id to
// RPC endpoint map.
func NewExecutor(privateKeyHex string, rpcURLs map[uint64]string) (*Executor, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid executor key: %w", err)
	}
	return &Executor{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		rpcURLs: rpcURLs,
		clients: make(map[uint64]*ethclient.Client),
	}, nil
}

// Address returns the operator address derived from the executor key.
func (e *Executor) Address() common.Address {
	return e.address
}

// EncodeTransferFrom packs an erc20 transferFrom(from, to, value) call.
func EncodeTransferFrom(from, to common.Address, value *big.Int) ([]byte, error) {
	return transferFromABI.Pack("transferFrom", from, to, value)
}

// EncodeExecuteBySender wraps the calls into one executeBySender payload.
func EncodeExecuteBySender(calls []entities.LowLevelCall) ([]byte, error) {
	return executeABI.Pack("executeBySender", calls)
}

// Execute bundles the calls into a single self-call transaction on the
// given chain, signs it with the executor key and submits it. Returns the
// transaction hash.
func (e *Executor) Execute(ctx context.Context, chainID uint64, calls []entities.LowLevelCall) (string, error) {
	client, err := e.client(chainID)
	if err != nil {
		return "", err
	}

	data, err := EncodeExecuteBySender(calls)
	if err != nil {
		return "", err
	}

	nonce, err := client.PendingNonceAt(ctx, e.address)
	if err != nil {
		return "", err
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: e.address,
		To:   &e.address,
		Data: data,
	})
	if err != nil {
		return "", err
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", err
	}

	tx := types.NewTransaction(nonce, e.address, big.NewInt(0), gasLimit, gasPrice, data)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)), e.key)
	if err != nil {
		return "", err
	}

	err = retry.Do(
		func() error { return client.SendTransaction(ctx, signedTx) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}
	return signedTx.Hash().Hex(), nil
}

func (e *Executor) client(chainID uint64) (*ethclient.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if client, ok := e.clients[chainID]; ok {
		return client, nil
	}
	url, ok := e.rpcURLs[chainID]
	if !ok {
		return nil, fmt.Errorf("unsupported chain id: %d", chainID)
	}
	client, err := ethclient.Dial(url)
	if err != nil {
		return nil, err
	}
	e.clients[chainID] = client
	return client, nil
}
