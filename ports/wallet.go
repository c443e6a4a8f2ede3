package ports

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrSignatureRejected is returned when the wallet holder declines to sign
var ErrSignatureRejected = errors.New("user rejected the signature request")

// Wallet is the connected-account capability of a wallet provider
type Wallet interface {
	// Account returns the connected address, false when no account is connected
	Account() (common.Address, bool)

	// RequestConnection asks the provider to connect; connection may complete later
	RequestConnection(ctx context.Context) error

	// SignMessage produces an EIP-191 personal signature over message
	SignMessage(ctx context.Context, message string) ([]byte, error)

	// ChainID returns the chain the wallet is connected to
	ChainID(ctx context.Context) (int64, error)
}
