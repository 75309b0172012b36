package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitializeTopUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var req initializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "user@example.com", req.Email)
		require.Equal(t, TopUpAmountKobo, req.Amount)
		require.Equal(t, "user-1", req.Metadata.UserID)
		require.Equal(t, TopUpCredits, req.Metadata.Credits)

		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]string{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"reference":         "ref-1",
			},
		})
	}))
	defer server.Close()

	client := NewClient("sk_test", server.URL)
	url, err := client.InitializeTopUp(context.Background(), "user@example.com", "user-1")
	require.NoError(t, err)
	require.Equal(t, "https://checkout.paystack.com/abc123", url)
}

func TestInitializeTopUpRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "invalid email"})
	}))
	defer server.Close()

	client := NewClient("sk_test", server.URL)
	_, err := client.InitializeTopUp(context.Background(), "bad", "user-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid email")
}

func TestInitializeTopUpHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("sk_test", server.URL)
	_, err := client.InitializeTopUp(context.Background(), "user@example.com", "user-1")
	require.Error(t, err)
}
