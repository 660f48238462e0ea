package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/corray333/foodorder/internal/service/models/payment"
)

type service interface {
	HandleNotification(ctx context.Context, n payment.Notification) error
}

type notificationRequest struct {
	Type string `json:"type"`
	Data struct {
		// The provider sends the id either as a number or as a string.
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

func (n *notificationRequest) toModel() payment.Notification {
	return payment.Notification{
		Type:   n.Type,
		DataID: rawID(n.Data.ID),
	}
}

// rawID unquotes a string id and treats an absent or null id as missing.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	return strings.Trim(string(raw), `"`)
}

// fromQuery reads the legacy form where type and id travel in the query string.
func fromQuery(r *http.Request) payment.Notification {
	q := r.URL.Query()

	typ := q.Get("type")
	if typ == "" {
		typ = q.Get("topic")
	}
	id := q.Get("data.id")
	if id == "" {
		id = q.Get("id")
	}

	return payment.Notification{Type: typ, DataID: id}
}

// Handle acknowledges every notification it can act on or safely ignore with 200 and answers
// 500 when the provider should retry.
func Handle(w http.ResponseWriter, r *http.Request, service service) {
	req := notificationRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.WarnContext(r.Context(), "Undecodable webhook body", "error", err)
	}

	n := req.toModel()
	if n.Type == "" || n.DataID == "" {
		n = fromQuery(r)
	}

	if err := service.HandleNotification(r.Context(), n); err != nil {
		slog.ErrorContext(r.Context(), "Webhook processing failed", "type", n.Type, "data_id", n.DataID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusOK)
}
