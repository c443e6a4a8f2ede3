package siwe

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidSignature = errors.New("invalid signature")

// Recover returns the address that produced an EIP-191 personal signature over text
func Recover(text string, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes: %w", crypto.SignatureLength, ErrInvalidSignature)
	}

	sig := make([]byte, len(signature))
	copy(sig, signature)
	// Wallets return v as 27/28; go-ethereum expects the raw recovery id
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(text)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover public key: %w", ErrInvalidSignature)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// Verify parses text, checks its time bounds and that signature was produced by the message address
func Verify(text string, signature []byte, now time.Time) (*Message, error) {
	m, err := Parse(text)
	if err != nil {
		return nil, err
	}

	if err := m.CheckTime(now); err != nil {
		return nil, err
	}

	signer, err := Recover(text, signature)
	if err != nil {
		return nil, err
	}
	if signer != m.Address {
		return nil, fmt.Errorf("signed by %s: %w", signer.Hex(), ErrInvalidSignature)
	}

	return m, nil
}
