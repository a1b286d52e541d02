package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Profile carries the identity attributes returned by the credential
// verifier alongside the token.
type Profile struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number,omitempty"`
	UserID        string `json:"user_id,omitempty"`
}

// Session is the authenticated identity of the current client. A session is
// either fully absent (logged out) or fully populated; Validate enforces
// the all-or-nothing invariant before any write to the store.
type Session struct {
	Token   string  `json:"token"`
	Role    Role    `json:"role"`
	Profile Profile `json:"profile"`
}

// Validate checks the all-or-nothing invariant: token, a valid role, and
// the profile's name and email must all be present.
func (s *Session) Validate() error {
	missing := []string{}
	if s.Token == "" {
		missing = append(missing, "token")
	}
	if !s.Role.IsValid() {
		missing = append(missing, "role")
	}
	if s.Profile.FullName == "" {
		missing = append(missing, "profile.full_name")
	}
	if s.Profile.Email == "" {
		missing = append(missing, "profile.email")
	}
	if len(missing) > 0 {
		return cloneWithMetadata(ErrPartialSession, map[string]any{
			"missing": missing,
		})
	}
	return nil
}

// UserUUID parses the profile's internal id when the verifier issued one.
func (s *Session) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.Profile.UserID)
}

// Expired reports whether the session token carries an exp claim in the
// past. Tokens that do not decode as JWTs are treated as opaque and never
// expire locally; the verifier remains the authority for those.
func (s *Session) Expired(now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now)
}

func (s Session) String() string {
	token := s.Token
	if len(token) > 8 {
		token = token[:8] + "..."
	}
	return fmt.Sprintf("role=%s email=%s token=%s", s.Role, s.Profile.Email, token)
}

// SessionFromToken rebuilds a session from the claims the verifier embeds
// in its tokens (role, full_name, email, sub). The claims are decoded
// without signature verification; trust decisions stay with the verifier.
func SessionFromToken(token string) (*Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, cloneWithMetadata(ErrPartialSession, map[string]any{
			"reason": "token is not a decodable JWT",
		})
	}

	role, _ := ParseRole(stringClaim(claims, "role"))

	session := &Session{
		Token: token,
		Role:  role,
		Profile: Profile{
			FullName: stringClaim(claims, "full_name"),
			Email:    stringClaim(claims, "email"),
			UserID:   stringClaim(claims, "sub"),
		},
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if raw, ok := claims[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}
