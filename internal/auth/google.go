package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Identity décrit ce qu'un fournisseur fédéré nous renvoie sur un compte.
type Identity struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Picture    string
}

var googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
var googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
var googleEndpoint = google.Endpoint

// GoogleProvider construit le provider utilisé par le login mobile par
// code d'autorisation.
func GoogleProvider() *OAuthProvider {
	return &OAuthProvider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
			Scopes:       []string{"email", "profile"},
			Endpoint:     googleEndpoint,
		},
	}
}

// VerifyGoogleIDToken valide un id_token mobile auprès de Google et
// vérifie que l'audience correspond à un de nos client IDs.
func VerifyGoogleIDToken(idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, errors.New("id_token manquant")
	}

	resp, err := http.Get(googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("token Google invalide")
	}

	var payload struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Picture  string `json:"picture"`
		Audience string `json:"aud"`
		Subject  string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	clientIDs := []string{
		os.Getenv("GOOGLE_WEB_CLIENT_ID"),
		os.Getenv("GOOGLE_IOS_CLIENT_ID"),
		os.Getenv("GOOGLE_ANDROID_CLIENT_ID"),
	}
	valid := false
	for _, id := range clientIDs {
		if id != "" && payload.Audience == id {
			valid = true
			break
		}
	}
	if !valid {
		return nil, errors.New("client ID non autorisé")
	}

	return &Identity{
		Provider:   "google",
		ProviderID: payload.Subject,
		Email:      payload.Email,
		Name:       payload.Name,
		Picture:    payload.Picture,
	}, nil
}

// FetchGoogleUserInfo récupère le profil Google d'un access token
// fraîchement échangé.
func FetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("profil Google inaccessible")
	}

	var gu struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, err
	}

	return &Identity{
		Provider:   "google",
		ProviderID: gu.ID,
		Email:      gu.Email,
		Name:       gu.Name,
		Picture:    gu.Picture,
	}, nil
}
