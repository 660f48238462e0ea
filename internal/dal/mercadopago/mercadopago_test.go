package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corray333/foodorder/internal/dal/interfaces/ipaymentgateway"
	"github.com/corray333/foodorder/internal/service/models/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/v1/payments/123":
			_, _ = w.Write([]byte(`{
				"id": 123,
				"status": "approved",
				"payment_type_id": "bank_transfer",
				"metadata": {"user_id": "u1", "items": "[{\"productId\":\"P1\",\"qtd\":2}]", "address": "{}"}
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", time.Second)

	p, err := c.GetPayment(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "123", p.ID)
	assert.Equal(t, payment.StatusApproved, p.Status)
	assert.Equal(t, "u1", p.Metadata.UserID)
	assert.JSONEq(t, `[{"productId":"P1","qtd":2}]`, p.Metadata.Items)

	_, err = c.GetPayment(context.Background(), "404")
	assert.True(t, errors.Is(err, ipaymentgateway.ErrPaymentNotFound))
}

func TestGetPayment_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "secret", time.Second).GetPayment(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCreatePreference(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"id": "pref-1", "init_point": "https://mp.example/checkout/pref-1"}`))
	}))
	defer srv.Close()

	pref, err := NewClient(srv.URL, "secret", time.Second).CreatePreference(context.Background(), payment.PreferenceRequest{
		Items: []payment.PreferenceItem{{
			ID:         "P1",
			Title:      "Burger",
			Quantity:   2,
			UnitPrice:  decimal.RequireFromString("12.50"),
			CurrencyID: "BRL",
		}},
		BackURLs:        payment.BackURLs{Success: "https://shop.example/ok"},
		NotificationURL: "https://shop.example/api/webhook/mp",
		Metadata:        payment.Metadata{UserID: "u1", Items: "[]", Address: "{}"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, "https://mp.example/checkout/pref-1", pref.InitPoint)

	items := got["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, 12.5, item["unit_price"])
	assert.Equal(t, "BRL", item["currency_id"])
	assert.Equal(t, "approved", got["auto_return"])
	assert.Equal(t, "u1", got["metadata"].(map[string]any)["user_id"])
}
