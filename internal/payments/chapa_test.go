package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChapa(handler http.HandlerFunc) (*ChapaClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := &ChapaClient{
		BaseURL:    server.URL,
		SecretKey:  "sk-test",
		HTTPClient: server.Client(),
	}
	return client, server
}

func TestChapaInitialize(t *testing.T) {
	var got chapaInitPayload
	var gotAuth string

	client, server := newTestChapa(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Hosted link",
			"data":    map[string]any{"checkout_url": "https://checkout.example/pay/xyz"},
		})
	})
	defer server.Close()

	url, err := client.Initialize(context.Background(), InitializeRequest{
		Amount:      30.97,
		Currency:    "ETB",
		Email:       "awa@example.com",
		FirstName:   "Awa",
		LastName:    "Bekele",
		TxRef:       "savoro-abc-123",
		CallbackURL: "https://api.savoro.app/api/payments/callback",
		ReturnURL:   "https://savoro.app/payment/success",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.example/pay/xyz", url)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "30.97", got.Amount)
	assert.Equal(t, "ETB", got.Currency)
	assert.Equal(t, "savoro-abc-123", got.TxRef)
	assert.Equal(t, "Awa", got.FirstName)
}

func TestChapaInitializeRefused(t *testing.T) {
	client, server := newTestChapa(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "failed",
			"message": "Invalid currency",
		})
	})
	defer server.Close()

	_, err := client.Initialize(context.Background(), InitializeRequest{TxRef: "x"})
	assert.ErrorContains(t, err, "Invalid currency")
}

func TestChapaInitializeHTTPError(t *testing.T) {
	client, server := newTestChapa(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer server.Close()

	_, err := client.Initialize(context.Background(), InitializeRequest{TxRef: "x"})
	assert.ErrorContains(t, err, "401")
}

func TestChapaVerify(t *testing.T) {
	paidAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	client, server := newTestChapa(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/savoro-abc-123", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": map[string]any{
				"status":     "success",
				"amount":     30.97,
				"currency":   "ETB",
				"created_at": paidAt.Format(time.RFC3339),
			},
		})
	})
	defer server.Close()

	result, err := client.Verify(context.Background(), "savoro-abc-123")
	require.NoError(t, err)
	assert.Equal(t, GatewaySuccess, result.Status)
	assert.InDelta(t, 30.97, result.Amount, 0.001)
	assert.True(t, result.PaidAt.Equal(paidAt))
}
