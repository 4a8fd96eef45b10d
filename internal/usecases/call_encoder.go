package usecases

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

const erc20ABI = `[
	{"name":"transfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"type":"bool"}]},
	{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"type":"bool"}]}
]`

var erc20 = mustParseABI(erc20ABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// UnlimitedAllowance is the maximum uint256, used as the approval amount
// for recurring batches.
var UnlimitedAllowance = new(big.Int).Set(math.MaxBig256)

type purposeKind int

const (
	purposeTransfer purposeKind = iota
	purposeApprove
)

// CallPurpose selects the call shape EncodeCall produces for a movement:
// either a direct transfer or an allowance grant to a spender, optionally
// overriding the approved amount.
type CallPurpose struct {
	kind           purposeKind
	spender        common.Address
	amountOverride *big.Int
}

// TransferPurpose encodes the movement as a direct send.
func TransferPurpose() CallPurpose {
	return CallPurpose{kind: purposeTransfer}
}

// ApprovePurpose grants the spender an allowance equal to the movement's
// scaled amount.
func ApprovePurpose(spender common.Address) CallPurpose {
	return CallPurpose{kind: purposeApprove, spender: spender}
}

// UnlimitedApprovePurpose grants the spender the maximum possible allowance.
func UnlimitedApprovePurpose(spender common.Address) CallPurpose {
	return CallPurpose{kind: purposeApprove, spender: spender, amountOverride: UnlimitedAllowance}
}

// EncodeCall turns one movement into the low-level call the wallet boundary
// accepts. Native-coin movements become plain value transfers with empty
// call data; token movements become zero-value calls against the token
// contract. The two shapes never mix.
func EncodeCall(m entities.Movement, purpose CallPurpose) (entities.LowLevelCall, error) {
	if !common.IsHexAddress(m.Destination) {
		return entities.LowLevelCall{}, fmt.Errorf("%w: destination %q", domainerrors.ErrInvalidInput, m.Destination)
	}

	switch purpose.kind {
	case purposeTransfer:
		rawAmount, err := ParseUnits(m.Amount, m.Asset.Decimals)
		if err != nil {
			return entities.LowLevelCall{}, err
		}
		if m.Asset.IsNative() {
			return entities.LowLevelCall{
				To:    common.HexToAddress(m.Destination),
				Value: rawAmount,
			}, nil
		}
		data, err := erc20.Pack("transfer", common.HexToAddress(m.Destination), rawAmount)
		if err != nil {
			return entities.LowLevelCall{}, err
		}
		return entities.LowLevelCall{
			To:    common.HexToAddress(m.Asset.ContractAddress),
			Value: big.NewInt(0),
			Data:  data,
		}, nil

	case purposeApprove:
		if m.Asset.IsNative() {
			return entities.LowLevelCall{}, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedAsset, m.Asset.Symbol)
		}
		amount := purpose.amountOverride
		if amount == nil {
			rawAmount, err := ParseUnits(m.Amount, m.Asset.Decimals)
			if err != nil {
				return entities.LowLevelCall{}, err
			}
			amount = rawAmount
		}
		data, err := erc20.Pack("approve", purpose.spender, amount)
		if err != nil {
			return entities.LowLevelCall{}, err
		}
		return entities.LowLevelCall{
			To:    common.HexToAddress(m.Asset.ContractAddress),
			Value: big.NewInt(0),
			Data:  data,
		}, nil
	}
	return entities.LowLevelCall{}, domainerrors.ErrInvalidInput
}

// ParseUnits converts a human-scale decimal string to the asset's smallest
// unit, scaling by 10^decimals with pure integer arithmetic. Digits beyond
// the asset's precision are rounded half-up. Anything that is not a plain
// non-negative decimal number fails with ErrInvalidAmount.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	s = strings.TrimPrefix(s, "+")
	if s == "" || strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrInvalidAmount, amount)
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrInvalidAmount, amount)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrInvalidAmount, amount)
	}
	if hasDot && fracPart == "" && intPart == "" {
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrInvalidAmount, amount)
	}

	d := int(decimals)
	roundUp := false
	if len(fracPart) > d {
		roundUp = fracPart[d] >= '5'
		fracPart = fracPart[:d]
	}
	fracPart += strings.Repeat("0", d-len(fracPart))

	raw, ok := new(big.Int).SetString("0"+intPart+fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrInvalidAmount, amount)
	}
	if roundUp {
		raw.Add(raw, big.NewInt(1))
	}
	return raw, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
