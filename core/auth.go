package core

import "time"

// Role values assigned by the backend
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

// User represents the backend-owned profile of a wallet holder
type User struct {
	ID            string       `json:"id"`
	WalletAddress string       `json:"wallet_address"`
	Address       string       `json:"address,omitempty"` // Alias of WalletAddress sent by some endpoints
	DisplayName   string       `json:"display_name,omitempty"`
	Bio           string       `json:"bio,omitempty"`
	AvatarURL     string       `json:"avatar_url,omitempty"`
	Email         string       `json:"email,omitempty"`
	SocialLinks   *SocialLinks `json:"social_links,omitempty"`
	Role          string       `json:"role,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     *time.Time   `json:"updated_at,omitempty"`
}

// SocialLinks holds optional profile links
type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// IsInstructor reports whether the user may manage courses
func (u *User) IsInstructor() bool {
	return u != nil && u.Role == RoleInstructor
}

// Name returns the display name, falling back to the shortened wallet address
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return FormatAddress(u.WalletAddress)
}

// SessionState is the lifecycle state of the client session
type SessionState int

const (
	// SessionRestoring means a persisted token exists but has not been revalidated yet
	SessionRestoring SessionState = iota
	// SessionAnonymous means no valid token is held
	SessionAnonymous
	// SessionAuthenticated means the token was issued or revalidated by the backend
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionRestoring:
		return "restoring"
	case SessionAnonymous:
		return "anonymous"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
