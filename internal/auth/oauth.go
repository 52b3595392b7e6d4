package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

var (
	ErrInvalidOAuthState = errors.New("invalid oauth state")
	ErrOAuthCodeExchange = errors.New("failed to exchange code")
	ErrOAuthAccount      = errors.New("failed to get account")
)

// OAuthService drives a lichess-style authorization-code flow with a
// public client and PKCE; there is no client secret.
type OAuthService struct {
	config     *oauth2.Config
	accountURL string
}

// Account is the external identity the provider reports for a token.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func NewOAuthService(clientID, authURL, tokenURL, accountURL, redirectURL string) *OAuthService {
	config := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}

	return &OAuthService{
		config:     config,
		accountURL: accountURL,
	}
}

// NewVerifier mints a per-session PKCE code verifier.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// GetAuthURL generates the authorization URL carrying the S256
// challenge for the session's verifier.
func (s *OAuthService) GetAuthURL(state, verifier string) string {
	return s.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// ExchangeCode redeems an authorization code together with the stored
// verifier.
func (s *OAuthService) ExchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, ErrOAuthCodeExchange
	}
	return token, nil
}

// GetAccount fetches the external account of the token's owner.
func (s *OAuthService) GetAccount(ctx context.Context, token *oauth2.Token) (*Account, error) {
	client := s.config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.accountURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ErrOAuthAccount
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, ErrOAuthAccount
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrOAuthAccount
	}
	var account Account
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, ErrOAuthAccount
	}
	if account.Username == "" {
		return nil, ErrOAuthAccount
	}
	return &account, nil
}
