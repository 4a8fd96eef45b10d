package blockchain

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

// EIP-1193 provider error codes.
const (
	codeUserRejected   = 4001
	codeMethodNotFound = -32601
)

// sendCallsParams is the wallet_sendCalls request object (EIP-5792).
type sendCallsParams struct {
	Version string          `json:"version"`
	From    string          `json:"from"`
	ChainID string          `json:"chainId"`
	Calls   []sendCallsItem `json:"calls"`
}

type sendCallsItem struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

// RPCWalletDispatcher forwards batch and signing requests to a wallet
// provider speaking JSON-RPC (a browser extension proxy or a wallet node).
type RPCWalletDispatcher struct {
	client *rpc.Client
}

// NewRPCWalletDispatcher dials the wallet provider endpoint.
func NewRPCWalletDispatcher(url string) (*RPCWalletDispatcher, error) {
	client, err := rpc.Dial(url)
	if err != nil {
		return nil, domainerrors.ErrNoWalletProvider
	}
	return &RPCWalletDispatcher{client: client}, nil
}

// NewRPCWalletDispatcherWithClient wraps an existing RPC client.
// Intended for unit tests over in-process servers.
func NewRPCWalletDispatcherWithClient(client *rpc.Client) *RPCWalletDispatcher {
	return &RPCWalletDispatcher{client: client}
}

// SendCalls submits the batch via wallet_sendCalls and returns the bundle
// identifier assigned by the wallet.
func (d *RPCWalletDispatcher) SendCalls(ctx context.Context, chainID uint64, from string, calls []entities.LowLevelCall) (string, error) {
	params := sendCallsParams{
		Version: "2.0.0",
		From:    from,
		ChainID: hexutil.EncodeUint64(chainID),
		Calls:   make([]sendCallsItem, 0, len(calls)),
	}
	for _, call := range calls {
		params.Calls = append(params.Calls, sendCallsItem{
			To:    call.To.Hex(),
			Value: hexutil.EncodeBig(call.Value),
			Data:  hexutil.Encode(call.Data),
		})
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := d.client.CallContext(ctx, &result, "wallet_sendCalls", params); err != nil {
		return "", mapProviderError(err)
	}
	return result.ID, nil
}

// SignMessage asks the wallet to sign message with the account's key
// (personal_sign, EIP-191). Returns the 65-byte signature hex-encoded.
func (d *RPCWalletDispatcher) SignMessage(ctx context.Context, account, message string) (string, error) {
	var signature string
	data := hexutil.Encode([]byte(message))
	if err := d.client.CallContext(ctx, &signature, "personal_sign", data, account); err != nil {
		return "", mapProviderError(err)
	}
	return signature, nil
}

// RequestAccounts prompts the wallet for account access and returns the
// exposed addresses.
func (d *RPCWalletDispatcher) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := d.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, mapProviderError(err)
	}
	return accounts, nil
}

// Close releases the underlying RPC connection.
func (d *RPCWalletDispatcher) Close() {
	d.client.Close()
}

func mapProviderError(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejected:
			return domainerrors.ErrWalletRejected
		case codeMethodNotFound:
			return domainerrors.ErrWalletUnsupported
		}
		return err
	}
	if strings.Contains(err.Error(), "connection refused") || strings.Contains(err.Error(), "no such host") {
		return domainerrors.ErrNoWalletProvider
	}
	return err
}
