package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0xacademy/academy/ports"
)

// ConnectFunc is called once the wallet account becomes connected
type ConnectFunc func(ctx context.Context, address common.Address)

// KeyWallet implements ports.Wallet using a local ECDSA private key
type KeyWallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    int64
	ethClient  *ethclient.Client

	mu          sync.Mutex
	connected   bool
	autoConnect bool
	declined    bool
	onConnect   []ConnectFunc
}

// Option configures a KeyWallet
type Option func(*KeyWallet)

// WithChainID sets the chain id reported when no RPC client is configured
func WithChainID(id int64) Option {
	return func(w *KeyWallet) { w.chainID = id }
}

// WithEthClient reads the chain id from an RPC endpoint instead of the static value
func WithEthClient(c *ethclient.Client) Option {
	return func(w *KeyWallet) { w.ethClient = c }
}

// WithManualConnect makes RequestConnection wait for an explicit Approve
func WithManualConnect() Option {
	return func(w *KeyWallet) { w.autoConnect = false }
}

// Connected starts the wallet with its account already connected
func Connected() Option {
	return func(w *KeyWallet) { w.connected = true }
}

// NewKeyWallet creates a wallet from a hex-encoded private key (with or without 0x)
func NewKeyWallet(privateKeyHex string, opts ...Option) (*KeyWallet, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return newKeyWallet(privateKey, opts...), nil
}

// GenerateKeyWallet creates a wallet with a fresh random key
func GenerateKeyWallet(opts ...Option) (*KeyWallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return newKeyWallet(privateKey, opts...), nil
}

func newKeyWallet(privateKey *ecdsa.PrivateKey, opts ...Option) *KeyWallet {
	w := &KeyWallet{
		privateKey:  privateKey,
		address:     crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:     1,
		autoConnect: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Address returns the key's address regardless of connection state
func (w *KeyWallet) Address() common.Address {
	return w.address
}

// OnConnect registers a callback fired when the account connects
func (w *KeyWallet) OnConnect(fn ConnectFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onConnect = append(w.onConnect, fn)
}

// Account returns the connected address
func (w *KeyWallet) Account() (common.Address, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.address, w.connected
}

// RequestConnection connects immediately unless manual connect is enabled
func (w *KeyWallet) RequestConnection(ctx context.Context) error {
	w.mu.Lock()
	auto := w.autoConnect
	w.mu.Unlock()

	if auto {
		w.Approve(ctx)
	}
	return nil
}

// Approve connects the account and fires the connect callbacks
func (w *KeyWallet) Approve(ctx context.Context) {
	w.mu.Lock()
	if w.connected {
		w.mu.Unlock()
		return
	}
	w.connected = true
	callbacks := append([]ConnectFunc(nil), w.onConnect...)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(ctx, w.address)
	}
}

// Disconnect drops the connection
func (w *KeyWallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
}

// Decline makes the next signature request fail with ports.ErrSignatureRejected
func (w *KeyWallet) Decline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.declined = true
}

// SignMessage signs message with the EIP-191 personal message prefix.
// The returned signature is 65 bytes with v in {27, 28}.
func (w *KeyWallet) SignMessage(ctx context.Context, message string) ([]byte, error) {
	w.mu.Lock()
	declined := w.declined
	w.declined = false
	w.mu.Unlock()

	if declined {
		return nil, ports.ErrSignatureRejected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signature, err := crypto.Sign(accounts.TextHash([]byte(message)), w.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	// Adjust v value for Ethereum (recovery ID 0/1 → 27/28)
	signature[crypto.RecoveryIDOffset] += 27

	return signature, nil
}

// ChainID returns the configured chain id, or asks the RPC node when one is set
func (w *KeyWallet) ChainID(ctx context.Context) (int64, error) {
	if w.ethClient == nil {
		return w.chainID, nil
	}

	id, err := w.ethClient.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("query chain id: %w", err)
	}
	return id.Int64(), nil
}
