// Package siwe builds, parses and verifies EIP-4361 Sign-In with Ethereum messages.
package siwe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Version is the only message version defined by EIP-4361
const Version = "1"

const (
	headerSuffix = " wants you to sign in with your Ethereum account:"
	timeLayout   = "2006-01-02T15:04:05.000Z07:00"

	tagURI        = "URI: "
	tagVersion    = "Version: "
	tagChainID    = "Chain ID: "
	tagNonce      = "Nonce: "
	tagIssuedAt   = "Issued At: "
	tagExpiration = "Expiration Time: "
	tagNotBefore  = "Not Before: "
	tagRequestID  = "Request ID: "
	tagResources  = "Resources:"
)

var (
	ErrMalformed = errors.New("malformed siwe message")
	ErrExpired   = errors.New("siwe message has expired")
	ErrNotYet    = errors.New("siwe message is not yet valid")
)

// Message is a Sign-In with Ethereum challenge
type Message struct {
	Domain         string
	Address        common.Address
	Statement      string
	URI            string
	Version        string
	ChainID        int64
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime *time.Time
	NotBefore      *time.Time
	RequestID      string
	Resources      []string
}

// NewMessage returns a version 1 message with the required fields set
func NewMessage(domain string, address common.Address, statement, uri string, chainID int64, nonce string, issuedAt time.Time) *Message {
	return &Message{
		Domain:    domain,
		Address:   address,
		Statement: statement,
		URI:       uri,
		Version:   Version,
		ChainID:   chainID,
		Nonce:     nonce,
		IssuedAt:  issuedAt.UTC(),
	}
}

// Validate checks that the required fields are present
func (m *Message) Validate() error {
	switch {
	case m.Domain == "":
		return fmt.Errorf("%w: domain is required", ErrMalformed)
	case m.Address == (common.Address{}):
		return fmt.Errorf("%w: address is required", ErrMalformed)
	case m.URI == "":
		return fmt.Errorf("%w: uri is required", ErrMalformed)
	case m.Version != Version:
		return fmt.Errorf("%w: unsupported version %q", ErrMalformed, m.Version)
	case m.Nonce == "" || !isAlphanumeric(m.Nonce):
		return fmt.Errorf("%w: nonce must be alphanumeric", ErrMalformed)
	case strings.ContainsRune(m.Statement, '\n'):
		return fmt.Errorf("%w: statement must be a single line", ErrMalformed)
	}
	return nil
}

// String serializes the message in the exact form the wallet signs
func (m *Message) String() string {
	var b strings.Builder

	b.WriteString(m.Domain + headerSuffix + "\n")
	b.WriteString(m.Address.Hex() + "\n\n")
	if m.Statement != "" {
		b.WriteString(m.Statement + "\n")
	}
	b.WriteString("\n")

	b.WriteString(tagURI + m.URI + "\n")
	b.WriteString(tagVersion + m.Version + "\n")
	b.WriteString(tagChainID + strconv.FormatInt(m.ChainID, 10) + "\n")
	b.WriteString(tagNonce + m.Nonce + "\n")
	b.WriteString(tagIssuedAt + formatTime(m.IssuedAt))

	if m.ExpirationTime != nil {
		b.WriteString("\n" + tagExpiration + formatTime(*m.ExpirationTime))
	}
	if m.NotBefore != nil {
		b.WriteString("\n" + tagNotBefore + formatTime(*m.NotBefore))
	}
	if m.RequestID != "" {
		b.WriteString("\n" + tagRequestID + m.RequestID)
	}
	if len(m.Resources) > 0 {
		b.WriteString("\n" + tagResources)
		for _, r := range m.Resources {
			b.WriteString("\n- " + r)
		}
	}

	return b.String()
}

// Parse reads a serialized message back into its fields
func Parse(text string) (*Message, error) {
	lines := strings.Split(text, "\n")
	if len(lines) < 8 {
		return nil, fmt.Errorf("%w: too few lines", ErrMalformed)
	}

	m := &Message{}

	domain, ok := strings.CutSuffix(lines[0], headerSuffix)
	if !ok || domain == "" {
		return nil, fmt.Errorf("%w: bad header", ErrMalformed)
	}
	m.Domain = domain

	if !common.IsHexAddress(lines[1]) {
		return nil, fmt.Errorf("%w: bad address %q", ErrMalformed, lines[1])
	}
	m.Address = common.HexToAddress(lines[1])

	if lines[2] != "" {
		return nil, fmt.Errorf("%w: expected blank line after address", ErrMalformed)
	}

	i := 3
	if lines[i] != "" {
		m.Statement = lines[i]
		i++
		if i >= len(lines) || lines[i] != "" {
			return nil, fmt.Errorf("%w: expected blank line after statement", ErrMalformed)
		}
	}
	i++

	var err error
	next := func(tag string) (string, bool) {
		if i < len(lines) && strings.HasPrefix(lines[i], tag) {
			v := strings.TrimPrefix(lines[i], tag)
			i++
			return v, true
		}
		return "", false
	}
	required := func(tag string) (string, error) {
		v, ok := next(tag)
		if !ok {
			return "", fmt.Errorf("%w: missing %q", ErrMalformed, strings.TrimSuffix(tag, ": "))
		}
		return v, nil
	}

	if m.URI, err = required(tagURI); err != nil {
		return nil, err
	}
	if m.Version, err = required(tagVersion); err != nil {
		return nil, err
	}
	chainID, err := required(tagChainID)
	if err != nil {
		return nil, err
	}
	if m.ChainID, err = strconv.ParseInt(chainID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: bad chain id: %v", ErrMalformed, err)
	}
	if m.Nonce, err = required(tagNonce); err != nil {
		return nil, err
	}
	issuedAt, err := required(tagIssuedAt)
	if err != nil {
		return nil, err
	}
	if m.IssuedAt, err = parseTime(issuedAt); err != nil {
		return nil, err
	}

	if v, ok := next(tagExpiration); ok {
		t, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		m.ExpirationTime = &t
	}
	if v, ok := next(tagNotBefore); ok {
		t, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		m.NotBefore = &t
	}
	if v, ok := next(tagRequestID); ok {
		m.RequestID = v
	}
	if i < len(lines) && lines[i] == tagResources {
		i++
		for i < len(lines) && strings.HasPrefix(lines[i], "- ") {
			m.Resources = append(m.Resources, strings.TrimPrefix(lines[i], "- "))
			i++
		}
	}

	if i != len(lines) {
		return nil, fmt.Errorf("%w: unexpected line %q", ErrMalformed, lines[i])
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// CheckTime validates the expiration and not-before bounds against now
func (m *Message) CheckTime(now time.Time) error {
	if m.ExpirationTime != nil && !now.Before(*m.ExpirationTime) {
		return ErrExpired
	}
	if m.NotBefore != nil && now.Before(*m.NotBefore) {
		return ErrNotYet
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformed, v)
	}
	return t, nil
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
