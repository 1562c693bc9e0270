package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/tomato/config"
)

func fakeGateway(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("cid:secret"))
		if r.Header.Get("Authorization") != want {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "client_credentials") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload struct {
			PurchaseUnits []struct {
				ReferenceID string `json:"reference_id"`
				Amount      struct {
					Value string `json:"value"`
				} `json:"amount"`
			} `json:"purchase_units"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.PurchaseUnits, 1)
		assert.Equal(t, "order-1", payload.PurchaseUnits[0].ReferenceID)
		assert.Equal(t, "42.50", payload.PurchaseUnits[0].Amount.Value)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "sess-9",
			"status": "CREATED",
			"links": []map[string]string{
				{"rel": "self", "href": "https://gateway/self"},
				{"rel": "approve", "href": "https://gateway/approve/sess-9"},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGateway(base string) Gateway {
	return New(config.Config{
		PaymentBaseURL:      base,
		PaymentClientID:     "cid",
		PaymentClientSecret: "secret",
		FrontendURL:         "http://localhost:5173",
	})
}

func TestCreateSession(t *testing.T) {
	srv := fakeGateway(t)
	g := newTestGateway(srv.URL)

	s, err := g.CreateSession(context.Background(), "order-1", 42.5)
	require.NoError(t, err)
	assert.Equal(t, "sess-9", s.ID)
	assert.Equal(t, "https://gateway/approve/sess-9", s.PayURL)
}

func TestCreateSessionBadCredentials(t *testing.T) {
	srv := fakeGateway(t)
	g := New(config.Config{
		PaymentBaseURL:      srv.URL,
		PaymentClientID:     "cid",
		PaymentClientSecret: "wrong",
		FrontendURL:         "http://localhost:5173",
	})

	_, err := g.CreateSession(context.Background(), "order-1", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token request failed")
}

func TestCreateSessionGatewayDown(t *testing.T) {
	srv := fakeGateway(t)
	srv.Close()
	g := newTestGateway(srv.URL)

	_, err := g.CreateSession(context.Background(), "order-1", 10)
	require.Error(t, err)
}
