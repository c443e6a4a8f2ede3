package store

import (
	"encoding/json"
	"fmt"

	"github.com/0xacademy/academy/ports"
)

// AuthKey is the single key the client persists
const AuthKey = "0xacademy-auth"

// authState is the persisted document; only the token survives a restart
type authState struct {
	Token string `json:"token"`
}

func encodeAuthState(token string) ([]byte, error) {
	raw, err := json.Marshal(authState{Token: token})
	if err != nil {
		return nil, fmt.Errorf("encode auth state: %w", err)
	}
	return raw, nil
}

func decodeAuthState(raw []byte) (string, error) {
	var s authState
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("decode auth state: %w", err)
	}
	if s.Token == "" {
		return "", ports.ErrNotFound
	}
	return s.Token, nil
}
