package types

import "github.com/golang-jwt/jwt/v5"

// Tokens bundles the access/refresh token pair issued on login.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthClaims are the JWT claims carried by access and refresh tokens.
// Subject holds the account id.
type AuthClaims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
