package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
)

// Identity is the normalized result of validating an external credential:
// a stable provider-scoped identifier plus the basic profile the account
// record is seeded from.
type Identity struct {
	Provider    string
	ProviderID  string
	Email       string
	DisplayName string
}

// GoogleOAuthProvider validates Google ID tokens and resolves them to an Identity.
type GoogleOAuthProvider struct {
	clientID string
}

func NewGoogleOAuthProvider(clientID string) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{clientID: clientID}
}

// ValidateIDToken verifies the ID token against Google's tokeninfo endpoint
// and checks that it was issued for this application.
func (p *GoogleOAuthProvider) ValidateIDToken(ctx context.Context, idToken string) (*Identity, error) {
	oauth2Service, err := oauth2.NewService(ctx, option.WithHTTPClient(&http.Client{}))
	if err != nil {
		return nil, err
	}

	tokenInfoCall := oauth2Service.Tokeninfo()
	tokenInfoCall.IdToken(idToken)
	tokenInfo, err := tokenInfoCall.Do()
	if err != nil {
		return nil, err
	}

	if tokenInfo.Audience != p.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	identity := &Identity{
		Provider:   "google",
		ProviderID: tokenInfo.UserId,
		Email:      tokenInfo.Email,
	}

	if userInfo, err := p.getUserInfo(idToken); err == nil {
		identity.DisplayName = userInfo.Name
	}

	return identity, nil
}

func (p *GoogleOAuthProvider) getUserInfo(idToken string) (*oauth2.Userinfo, error) {
	client := &http.Client{}

	req, err := http.NewRequest(http.MethodGet, "https://www.googleapis.com/oauth2/v1/userinfo", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+idToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("status code is not OK")
	}

	var userInfo oauth2.Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, err
	}

	return &userInfo, nil
}
