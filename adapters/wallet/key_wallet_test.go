package wallet

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xacademy/academy/ports"
	"github.com/0xacademy/academy/siwe"
)

// Well-known hardhat account #0
const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestNewKeyWallet(t *testing.T) {
	w, err := NewKeyWallet(testKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), w.Address())

	_, connected := w.Account()
	assert.False(t, connected)

	_, err = NewKeyWallet("0xnothex")
	assert.Error(t, err)
}

func TestSignMessageRecoversToAddress(t *testing.T) {
	w, err := NewKeyWallet(testKey, Connected())
	require.NoError(t, err)

	sig, err := w.SignMessage(context.Background(), "hello academy")
	require.NoError(t, err)
	require.Len(t, sig, crypto.SignatureLength)
	assert.Contains(t, []byte{27, 28}, sig[crypto.RecoveryIDOffset])

	addr, err := siwe.Recover("hello academy", sig)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), addr)
}

func TestDecline(t *testing.T) {
	w, err := GenerateKeyWallet(Connected())
	require.NoError(t, err)

	w.Decline()
	_, err = w.SignMessage(context.Background(), "x")
	assert.ErrorIs(t, err, ports.ErrSignatureRejected)

	// Declining only affects the next request
	_, err = w.SignMessage(context.Background(), "x")
	assert.NoError(t, err)
}

func TestRequestConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("auto", func(t *testing.T) {
		w, err := GenerateKeyWallet()
		require.NoError(t, err)

		var got common.Address
		w.OnConnect(func(_ context.Context, a common.Address) { got = a })

		require.NoError(t, w.RequestConnection(ctx))
		_, connected := w.Account()
		assert.True(t, connected)
		assert.Equal(t, w.Address(), got)
	})

	t.Run("manual", func(t *testing.T) {
		w, err := GenerateKeyWallet(WithManualConnect())
		require.NoError(t, err)

		calls := 0
		w.OnConnect(func(context.Context, common.Address) { calls++ })

		require.NoError(t, w.RequestConnection(ctx))
		_, connected := w.Account()
		assert.False(t, connected)

		w.Approve(ctx)
		w.Approve(ctx)
		_, connected = w.Account()
		assert.True(t, connected)
		assert.Equal(t, 1, calls)
	})
}

func TestChainID(t *testing.T) {
	w, err := GenerateKeyWallet(WithChainID(8453))
	require.NoError(t, err)

	id, err := w.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8453), id)
}
