package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuthProvider porte la configuration oauth2 d'un fournisseur pour le
// flux mobile par code d'autorisation. Le flux web passe par goth et ne
// touche jamais cette structure.
type OAuthProvider struct {
	Name   string
	Config *oauth2.Config
}

// Exchange échange un code d'autorisation contre un access token.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.Config.Exchange(ctx, code)
}
