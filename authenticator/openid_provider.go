package authenticator

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OpenIDConfig holds the issuer and client credentials for an OpenID
// Connect identity provider
type OpenIDConfig struct {
	Domain       string
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// OpenIDProvider implements Provider against any OpenID Connect issuer
// reachable via discovery
type OpenIDProvider struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	config   oauth2.Config
}

// NewOpenIDProvider discovers the issuer's endpoints and builds a provider.
// The email scope is mandatory: the email claim is what account resolution
// keys on.
func NewOpenIDProvider(cfg OpenIDConfig) (Provider, error) {
	for field, value := range map[string]string{
		"domain":        cfg.Domain,
		"client ID":     cfg.ClientID,
		"client secret": cfg.ClientSecret,
		"callback URL":  cfg.CallbackURL,
	} {
		if value == "" {
			return nil, fmt.Errorf("openid configuration: %s is required", field)
		}
	}

	provider, err := oidc.NewProvider(context.Background(), "https://"+cfg.Domain+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to discover openid provider: %w", err)
	}

	return &OpenIDProvider{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// GetAuthURL returns the issuer's authorization URL carrying the CSRF state
func (p *OpenIDProvider) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// ExchangeCode trades the authorization code for tokens
func (p *OpenIDProvider) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	exchanged, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	idToken, _ := exchanged.Extra("id_token").(string)
	return &Token{
		AccessToken:  exchanged.AccessToken,
		RefreshToken: exchanged.RefreshToken,
		IDToken:      idToken,
		Expiry:       exchanged.Expiry.Unix(),
	}, nil
}

// GetClaims verifies the ID token and returns its claims
func (p *OpenIDProvider) GetClaims(ctx context.Context, token *Token) (Claims, error) {
	if token.IDToken == "" {
		return nil, fmt.Errorf("token carries no id_token")
	}

	verified, err := p.verifier.Verify(ctx, token.IDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}

	var claims Claims
	if err := verified.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode id token claims: %w", err)
	}
	return claims, nil
}
