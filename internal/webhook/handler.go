package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/uxforge/figma-docs-sync/internal/constants"
	"github.com/uxforge/figma-docs-sync/internal/dispatch"
)

type eventForwarder interface {
	Forward(ctx context.Context, event dispatch.Event) error
}

type allower interface {
	IsAllowed(fileKey string) bool
}

// response is the JSON body returned to the webhook caller.
type response struct {
	Message   string `json:"message,omitempty"`
	Triggered bool   `json:"triggered,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Handler processes incoming Figma webhook requests.
type Handler struct {
	secret       string
	forwarder    eventForwarder
	allower      allower
	maxBodyBytes int64
}

// NewHandler creates a new webhook handler.
//
// An empty secret disables signature verification. This matches the permissive
// behavior of the upstream pipeline: the webhook can run unauthenticated in
// development setups.
func NewHandler(secret string, forwarder eventForwarder, allower allower, maxBodyBytes int64) *Handler {
	return &Handler{
		secret:       secret,
		forwarder:    forwarder,
		allower:      allower,
		maxBodyBytes: maxBodyBytes,
	}
}

// ServeHTTP handles one webhook request. Outcomes: 405 for anything that is
// not POST or OPTIONS, 200 for OPTIONS preflight, 401 on signature mismatch,
// 400 on unparsable JSON, 200 for processed or ignored events, 500 with an
// opaque message when dispatching fails.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.New().String()

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+constants.SignatureHeader)
		writeJSON(w, http.StatusOK, response{Message: "OK"})
		return
	}

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, response{Error: "Method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("Failed to read request body", "req_id", reqID, "err", err)
		writeJSON(w, http.StatusBadRequest, response{Error: "Failed to read body"})
		return
	}

	if h.secret != "" {
		if !VerifySignature(body, r.Header.Get(constants.SignatureHeader), h.secret) {
			slog.Warn("Invalid webhook signature", "req_id", reqID)
			writeJSON(w, http.StatusUnauthorized, response{Error: "Invalid signature"})
			return
		}
	} else {
		slog.Warn("No webhook secret configured, skipping signature verification", "req_id", reqID)
	}

	var event dispatch.Event
	if err := json.Unmarshal(body, &event); err != nil {
		slog.Error("Failed to parse JSON payload", "req_id", reqID, "err", err)
		writeJSON(w, http.StatusBadRequest, response{Error: "Invalid JSON"})
		return
	}

	slog.Info("Webhook event received", "req_id", reqID, "event", event.Type, "file", event.FileKey, "by", event.TriggeredBy)

	if event.Type != constants.FileUpdateEvent {
		writeJSON(w, http.StatusOK, response{Message: "Ignored event: " + event.Type})
		return
	}

	if !h.allower.IsAllowed(event.FileKey) {
		slog.Info("File key not in watch list, ignoring", "req_id", reqID, "file", event.FileKey)
		writeJSON(w, http.StatusOK, response{Message: "Ignored file: " + event.FileKey})
		return
	}

	if err := h.forwarder.Forward(r.Context(), event); err != nil {
		// The real error stays server-side, the caller gets an opaque message.
		slog.Error("Failed to forward event", "req_id", reqID, "err", err)
		writeJSON(w, http.StatusInternalServerError, response{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "Sync triggered", Triggered: true})
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}
