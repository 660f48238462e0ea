package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/corray333/foodorder/internal/dal/interfaces/ipaymentgateway"
	"github.com/corray333/foodorder/internal/service/models/payment"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

// Client is a Mercado Pago REST client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for baseURL authenticating with token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// MustNewClient creates a client from config. It panics without an access token.
func MustNewClient() *Client {
	token := os.Getenv("MP_ACCESS_TOKEN")
	if token == "" {
		panic("MP_ACCESS_TOKEN is not set")
	}

	return NewClient(viper.GetString("payment.base_url"), token, viper.GetDuration("payment.timeout"))
}

type paymentDal struct {
	ID            json.Number      `json:"id"`
	Status        string           `json:"status"`
	PaymentTypeID string           `json:"payment_type_id"`
	Metadata      payment.Metadata `json:"metadata"`
}

type preferenceItemDal struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
	PictureURL string  `json:"picture_url,omitempty"`
}

type preferenceDal struct {
	Items           []preferenceItemDal `json:"items"`
	BackURLs        payment.BackURLs    `json:"back_urls"`
	AutoReturn      string              `json:"auto_return,omitempty"`
	NotificationURL string              `json:"notification_url,omitempty"`
	Metadata        payment.Metadata    `json:"metadata"`
}

// GetPayment fetches a payment by id.
func (c *Client) GetPayment(ctx context.Context, id string) (payment.Payment, error) {
	ctx, span := otel.Tracer("repository").Start(ctx, "MercadoPago.GetPayment")
	defer span.End()

	var p paymentDal
	status, err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, &p)
	if status == http.StatusNotFound {
		return payment.Payment{}, ipaymentgateway.ErrPaymentNotFound
	}
	if err != nil {
		return payment.Payment{}, fmt.Errorf("failed to get payment %s: %w", id, err)
	}

	return payment.Payment{
		ID:            p.ID.String(),
		Status:        p.Status,
		PaymentTypeID: p.PaymentTypeID,
		Metadata:      p.Metadata,
	}, nil
}

// CreatePreference creates a checkout preference.
func (c *Client) CreatePreference(ctx context.Context, req payment.PreferenceRequest) (payment.Preference, error) {
	ctx, span := otel.Tracer("repository").Start(ctx, "MercadoPago.CreatePreference")
	defer span.End()

	body := preferenceDal{
		Items:           make([]preferenceItemDal, 0, len(req.Items)),
		BackURLs:        req.BackURLs,
		NotificationURL: req.NotificationURL,
		Metadata:        req.Metadata,
	}
	if req.BackURLs.Success != "" {
		body.AutoReturn = "approved"
	}
	for _, it := range req.Items {
		body.Items = append(body.Items, preferenceItemDal{
			ID:         it.ID,
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.InexactFloat64(),
			CurrencyID: it.CurrencyID,
			PictureURL: it.PictureURL,
		})
	}

	var pref payment.Preference
	if _, err := c.do(ctx, http.MethodPost, "/checkout/preferences", body, &pref); err != nil {
		return payment.Preference{}, fmt.Errorf("failed to create preference: %w", err)
	}

	return pref, nil
}

// do sends a JSON request and decodes a 2xx JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("mercado pago returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.StatusCode, nil
}
