package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeWalletServer answers JSON-RPC requests with canned results keyed by
// method name, recording every request it sees.
func fakeWalletServer(t *testing.T, results map[string]interface{}, errs map[string]int) (*rpc.Client, *[]rpcRequest) {
	t.Helper()
	var seen []rpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)

		w.Header().Set("Content-Type", "application/json")
		if code, ok := errs[req.Method]; ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":%d,"message":"provider error"}}`, req.ID, code)
			return
		}
		result, _ := json.Marshal(results[req.Method])
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	}))
	t.Cleanup(server.Close)

	client, err := rpc.Dial(server.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client, &seen
}

func TestSendCallsRequestShape(t *testing.T) {
	client, seen := fakeWalletServer(t,
		map[string]interface{}{"wallet_sendCalls": map[string]string{"id": "bundle-1"}}, nil)
	dispatcher := NewRPCWalletDispatcherWithClient(client)

	calls := []entities.LowLevelCall{
		{
			To:    common.HexToAddress("0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"),
			Value: big.NewInt(0),
			Data:  []byte{0xa9, 0x05, 0x9c, 0xbb},
		},
		{
			To:    common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678"),
			Value: big.NewInt(500_000_000_000_000_000),
			Data:  nil,
		},
	}
	id, err := dispatcher.SendCalls(context.Background(), 8453, "0x6969174FD72466430a46e18234D0b530c9FD5f49", calls)
	require.NoError(t, err)
	assert.Equal(t, "bundle-1", id)

	require.Len(t, *seen, 1)
	require.Len(t, (*seen)[0].Params, 1)

	var params sendCallsParams
	require.NoError(t, json.Unmarshal((*seen)[0].Params[0], &params))
	assert.Equal(t, "2.0.0", params.Version)
	assert.Equal(t, "0x6969174FD72466430a46e18234D0b530c9FD5f49", params.From)
	assert.Equal(t, "0x2105", params.ChainID)
	require.Len(t, params.Calls, 2)
	assert.Equal(t, "0xa9059cbb", params.Calls[0].Data)
	assert.Equal(t, "0x0", params.Calls[0].Value)
	assert.Equal(t, "0x6f05b59d3b20000", params.Calls[1].Value)
	assert.Equal(t, "0x", params.Calls[1].Data)
}

func TestSignMessageHexEncodesMessage(t *testing.T) {
	client, seen := fakeWalletServer(t,
		map[string]interface{}{"personal_sign": "0xsignature"}, nil)
	dispatcher := NewRPCWalletDispatcherWithClient(client)

	sig, err := dispatcher.SignMessage(context.Background(), "0xabc", "hi")
	require.NoError(t, err)
	assert.Equal(t, "0xsignature", sig)

	require.Len(t, (*seen)[0].Params, 2)
	var data, account string
	require.NoError(t, json.Unmarshal((*seen)[0].Params[0], &data))
	require.NoError(t, json.Unmarshal((*seen)[0].Params[1], &account))
	assert.Equal(t, "0x6869", data)
	assert.Equal(t, "0xabc", account)
}

func TestRequestAccounts(t *testing.T) {
	client, _ := fakeWalletServer(t,
		map[string]interface{}{"eth_requestAccounts": []string{"0xabc", "0xdef"}}, nil)
	dispatcher := NewRPCWalletDispatcherWithClient(client)

	accounts, err := dispatcher.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0xabc", "0xdef"}, accounts)
}

func TestProviderErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		code int
		want error
	}{
		{"user rejected", 4001, domainerrors.ErrWalletRejected},
		{"method not found", -32601, domainerrors.ErrWalletUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := fakeWalletServer(t, nil, map[string]int{"wallet_sendCalls": tc.code})
			dispatcher := NewRPCWalletDispatcherWithClient(client)

			_, err := dispatcher.SendCalls(context.Background(), 8453, "0xabc", nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSendCallsProviderDown(t *testing.T) {
	client, err := rpc.Dial("http://127.0.0.1:1")
	require.NoError(t, err)
	t.Cleanup(client.Close)
	dispatcher := NewRPCWalletDispatcherWithClient(client)

	_, err = dispatcher.SendCalls(context.Background(), 8453, "0xabc", nil)
	assert.ErrorIs(t, err, domainerrors.ErrNoWalletProvider)
}
