package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultChapaBaseURL = "https://api.chapa.co/v1"

// ChapaClient parle à l'API Chapa : POST transaction/initialize pour
// obtenir l'URL de checkout hébergée, GET transaction/verify/{tx_ref}
// pour vérifier par référence.
type ChapaClient struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

func NewChapaClient() *ChapaClient {
	baseURL := os.Getenv("CHAPA_BASE_URL")
	if baseURL == "" {
		baseURL = defaultChapaBaseURL
	}
	return &ChapaClient{
		BaseURL:   baseURL,
		SecretKey: os.Getenv("CHAPA_SECRET_KEY"),
		// La passerelle n'offre aucune garantie de latence : timeout
		// explicite plutôt que blocage du handler.
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type chapaInitPayload struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
}

type chapaInitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

type chapaVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string    `json:"status"`
		Amount    float64   `json:"amount"`
		Currency  string    `json:"currency"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"data"`
}

func (c *ChapaClient) Initialize(ctx context.Context, req InitializeRequest) (string, error) {
	payload := chapaInitPayload{
		Amount:      fmt.Sprintf("%.2f", req.Amount),
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
	}

	var resp chapaInitResponse
	if err := c.post(ctx, "/transaction/initialize", payload, &resp); err != nil {
		return "", err
	}
	if resp.Status != GatewaySuccess || resp.Data.CheckoutURL == "" {
		return "", fmt.Errorf("initialisation refusée par la passerelle: %s", resp.Message)
	}
	return resp.Data.CheckoutURL, nil
}

func (c *ChapaClient) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	var resp chapaVerifyResponse
	if err := c.get(ctx, "/transaction/verify/"+txRef, &resp); err != nil {
		return nil, err
	}
	return &VerifyResult{
		Status: resp.Data.Status,
		Amount: resp.Data.Amount,
		PaidAt: resp.Data.CreatedAt,
	}, nil
}

func (c *ChapaClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *ChapaClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *ChapaClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("la passerelle a répondu %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
