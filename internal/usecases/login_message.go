package usecases

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	domainerrors "go-payments.backend/internal/domain/errors"
)

// Login message layout shared by the client signer and the server
// verifier. The timestamp is unix milliseconds.
const (
	loginGreeting = "Welcome to GoPayments!"
	loginFooter   = "Sign this message to log in. Do not share this message with anyone."
)

// LoginMessage builds the message a wallet signs to authenticate.
func LoginMessage(address string, timestampMillis int64) string {
	return fmt.Sprintf("%s\nAddress: %s\nTimestamp: %d\n\n%s",
		loginGreeting, address, timestampMillis, loginFooter)
}

// ParseLoginMessage extracts the embedded address and timestamp, rejecting
// anything that does not match the exact layout.
func ParseLoginMessage(message string) (address string, timestampMillis int64, err error) {
	lines := strings.Split(message, "\n")
	if len(lines) != 5 ||
		lines[0] != loginGreeting ||
		lines[3] != "" ||
		lines[4] != loginFooter {
		return "", 0, fmt.Errorf("%w: unexpected login message layout", domainerrors.ErrInvalidSignature)
	}
	address, ok := strings.CutPrefix(lines[1], "Address: ")
	if !ok {
		return "", 0, fmt.Errorf("%w: missing address line", domainerrors.ErrInvalidSignature)
	}
	tsRaw, ok := strings.CutPrefix(lines[2], "Timestamp: ")
	if !ok {
		return "", 0, fmt.Errorf("%w: missing timestamp line", domainerrors.ErrInvalidSignature)
	}
	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: timestamp %q", domainerrors.ErrInvalidSignature, tsRaw)
	}
	return address, ts, nil
}

// RecoverSigner returns the address that produced an EIP-191 personal_sign
// signature over the message.
func RecoverSigner(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("%w: malformed signature", domainerrors.ErrInvalidSignature)
	}
	// Wallets return V as 27/28; crypto expects 0/1.
	sig = append([]byte(nil), sig...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domainerrors.ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}
