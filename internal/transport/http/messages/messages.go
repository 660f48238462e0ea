package messages

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/message"
	"github.com/corray333/foodorder/pkg/http/middleware/auth"
	"github.com/corray333/foodorder/pkg/http/response"
	"github.com/go-chi/chi/v5"
)

type service interface {
	PostMessage(ctx context.Context, model message.CreateMessageModel) (message.Message, error)
	ListMessages(ctx context.Context, orderID string) ([]message.Message, error)
	CountMessages(ctx context.Context, orderID string) (int64, error)
}

type postMessageRequest struct {
	Text   string `json:"text"`
	Sender string `json:"sender"`
}

type postMessageResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    message.Message `json:"data"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// Post stores a chat message. The author is always the authenticated caller.
func Post(w http.ResponseWriter, r *http.Request, service service) {
	callerID, _ := auth.UserID(r.Context())

	req := postMessageRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, errs.Validation(errs.CodeInvalidBody, "invalid request body"))

		return
	}

	msg, err := service.PostMessage(r.Context(), message.CreateMessageModel{
		OrderID: chi.URLParam(r, "id"),
		UserID:  callerID,
		Text:    req.Text,
		Sender:  message.Sender(req.Sender),
	})
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusCreated, postMessageResponse{
		Success: true,
		Message: "message sent",
		Data:    msg,
	})
}

func List(w http.ResponseWriter, r *http.Request, service service) {
	msgs, err := service.ListMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, msgs)
}

func Count(w http.ResponseWriter, r *http.Request, service service) {
	n, err := service.CountMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, countResponse{Count: n})
}
