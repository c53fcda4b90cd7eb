package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopchat/shopchat/internal/chat"
)

type chatRequest struct {
	Messages []chat.Turn `json:"messages"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// handleChat always answers with {"response": string}, including on error
// paths; only the HTTP status distinguishes failures.
func handleChat(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, chatResponse{Response: chat.MsgModelUnavailable})
		return
	}

	var request chatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: "Invalid request format. Please try again."})
		return
	}

	reply, err := deps.Chat.Answer(r.Context(), request.Messages)
	writeJSON(w, statusForChatError(err), chatResponse{Response: reply})
}

// statusForChatError maps pipeline outcomes to HTTP statuses. Downstream
// failures are categorized by inspecting the error text for the
// "API key", "timeout", and "rate limit" markers the model client emits.
func statusForChatError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, chat.ErrEmptyConversation):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrModelNotConfigured):
		return http.StatusServiceUnavailable
	}

	text := err.Error()
	switch {
	case strings.Contains(strings.ToLower(text), "timeout"), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case strings.Contains(text, "rate limit"):
		return http.StatusTooManyRequests
	case strings.Contains(text, "API key"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
