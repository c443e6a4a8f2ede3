package siwe_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xacademy/academy/adapters/wallet"
	"github.com/0xacademy/academy/siwe"
)

var issuedAt = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func testMessage() *siwe.Message {
	addr := common.HexToAddress("0xabc0000000000000000000000000000000000123")
	return siwe.NewMessage("academy.example", addr, "Sign in to 0xAcademy", "https://academy.example", 1, "n0nce1", issuedAt)
}

func TestMessageString(t *testing.T) {
	m := testMessage()

	expected := "academy.example wants you to sign in with your Ethereum account:\n" +
		m.Address.Hex() + "\n" +
		"\n" +
		"Sign in to 0xAcademy\n" +
		"\n" +
		"URI: https://academy.example\n" +
		"Version: 1\n" +
		"Chain ID: 1\n" +
		"Nonce: n0nce1\n" +
		"Issued At: 2026-03-14T09:26:53.589Z"

	assert.Equal(t, expected, m.String())
	assert.Equal(t, m.String(), testMessage().String(), "serialization must be deterministic")
}

func TestParseRoundTrip(t *testing.T) {
	m := testMessage()

	parsed, err := siwe.Parse(m.String())
	require.NoError(t, err)

	assert.Equal(t, m.Domain, parsed.Domain)
	assert.Equal(t, m.Address, parsed.Address)
	assert.Equal(t, m.Statement, parsed.Statement)
	assert.Equal(t, m.URI, parsed.URI)
	assert.Equal(t, m.ChainID, parsed.ChainID)
	assert.Equal(t, "n0nce1", parsed.Nonce)
	assert.True(t, m.IssuedAt.Equal(parsed.IssuedAt))
	assert.Equal(t, m.String(), parsed.String())
}

func TestParseOptionalFields(t *testing.T) {
	m := testMessage()
	m.Statement = ""
	exp := issuedAt.Add(time.Hour)
	nbf := issuedAt.Add(-time.Minute)
	m.ExpirationTime = &exp
	m.NotBefore = &nbf
	m.RequestID = "req42"
	m.Resources = []string{"https://academy.example/courses", "ipfs://bafy"}

	parsed, err := siwe.Parse(m.String())
	require.NoError(t, err)

	assert.Empty(t, parsed.Statement)
	require.NotNil(t, parsed.ExpirationTime)
	assert.True(t, exp.Equal(*parsed.ExpirationTime))
	require.NotNil(t, parsed.NotBefore)
	assert.Equal(t, "req42", parsed.RequestID)
	assert.Equal(t, m.Resources, parsed.Resources)
	assert.Equal(t, m.String(), parsed.String())
}

func TestParseMalformed(t *testing.T) {
	valid := testMessage().String()

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"bad header", "academy.example wants a signature\n" + valid[len("academy.example wants you to sign in with your Ethereum account:\n"):]},
		{"bad address", "academy.example wants you to sign in with your Ethereum account:\nnot-an-address\n\n\nURI: x\nVersion: 1\nChain ID: 1\nNonce: abc\nIssued At: 2026-03-14T09:26:53.589Z"},
		{"bad chain id", "academy.example wants you to sign in with your Ethereum account:\n0xabc0000000000000000000000000000000000123\n\n\nURI: x\nVersion: 1\nChain ID: one\nNonce: abc\nIssued At: 2026-03-14T09:26:53.589Z"},
		{"missing nonce", "academy.example wants you to sign in with your Ethereum account:\n0xabc0000000000000000000000000000000000123\n\n\nURI: x\nVersion: 1\nChain ID: 1\nIssued At: 2026-03-14T09:26:53.589Z\nfoo"},
		{"trailing garbage", valid + "\nExtra: field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := siwe.Parse(tt.text)
			assert.ErrorIs(t, err, siwe.ErrMalformed)
		})
	}
}

func TestVerify(t *testing.T) {
	w, err := wallet.GenerateKeyWallet(wallet.Connected())
	require.NoError(t, err)

	m := siwe.NewMessage("academy.example", w.Address(), "Sign in to 0xAcademy", "https://academy.example", 1, "abcdef12", issuedAt)
	text := m.String()

	sig, err := w.SignMessage(context.Background(), text)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		parsed, err := siwe.Verify(text, sig, issuedAt)
		require.NoError(t, err)
		assert.Equal(t, w.Address(), parsed.Address)
	})

	t.Run("tampered message", func(t *testing.T) {
		tampered := siwe.NewMessage("evil.example", w.Address(), "Sign in to 0xAcademy", "https://academy.example", 1, "abcdef12", issuedAt)
		_, err := siwe.Verify(tampered.String(), sig, issuedAt)
		assert.ErrorIs(t, err, siwe.ErrInvalidSignature)
	})

	t.Run("short signature", func(t *testing.T) {
		_, err := siwe.Verify(text, sig[:64], issuedAt)
		assert.ErrorIs(t, err, siwe.ErrInvalidSignature)
	})

	t.Run("expired", func(t *testing.T) {
		exp := issuedAt.Add(time.Minute)
		m.ExpirationTime = &exp
		text := m.String()
		sig, err := w.SignMessage(context.Background(), text)
		require.NoError(t, err)

		_, err = siwe.Verify(text, sig, issuedAt.Add(time.Hour))
		assert.ErrorIs(t, err, siwe.ErrExpired)
	})
}
