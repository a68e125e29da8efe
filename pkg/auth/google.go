package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrMissingIDToken   = errors.New("oauth: token response has no id_token")
	ErrEmailNotVerified = errors.New("oauth: google account email is not verified")
)

// Identity is what a successful Google sign-in proves about the caller.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

type GoogleProvider struct {
	oauth *oauth2.Config
	keys  *KeySet
}

func NewGoogleProvider(cfg GoogleConfig, keys *KeySet) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		keys: keys,
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for tokens and verifies the ID token
// against Google's published keys.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth: exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrMissingIDToken
	}
	return p.VerifyIDToken(rawIDToken)
}

func (p *GoogleProvider) VerifyIDToken(raw string) (*Identity, error) {
	claims := &googleClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, p.keys.KeyFunc,
		jwt.WithAudience(p.oauth.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("oauth: invalid id_token: %w", err)
	}

	if claims.Issuer != "accounts.google.com" && claims.Issuer != "https://accounts.google.com" {
		return nil, fmt.Errorf("oauth: unexpected issuer %q", claims.Issuer)
	}
	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
