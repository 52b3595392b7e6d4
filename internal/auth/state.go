package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// stateTTL bounds the login round-trip; a state older than this is
// rejected at the callback.
const stateTTL = 10 * time.Minute

// StateService signs and verifies the OAuth state parameter, so the
// callback can reject forged or replay-delayed round-trips without
// keeping server-side state.
type StateService struct {
	secret []byte
}

type stateClaims struct {
	jwt.RegisteredClaims
}

func NewStateService(secret string) *StateService {
	return &StateService{secret: []byte(secret)}
}

// Mint creates a short-lived signed state token.
func (s *StateService) Mint() (string, error) {
	claims := stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry of a state token.
func (s *StateService) Verify(state string) error {
	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidOAuthState
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidOAuthState
	}
	return nil
}
