package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/likesync/likesync/internal/likes"
	"github.com/likesync/likesync/internal/yandex"
)

// LikesService is the pipeline the handlers call into.
type LikesService interface {
	Export(ctx context.Context, token string) (*likes.Export, error)
	Verify(ctx context.Context, token string) (*likes.Verification, error)
}

// Handlers contains the HTTP handlers for the export API.
type Handlers struct {
	likes  LikesService
	logger *log.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc LikesService, logger *log.Logger) *Handlers {
	return &Handlers{likes: svc, logger: logger}
}

// tokenRequest is the body shape shared by /verify and /likes.
type tokenRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	OK    bool   `json:"ok"`
	UID   *int64 `json:"uid,omitempty"`
	Login string `json:"login,omitempty"`
	Error string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health handles GET /health. Liveness only, no dependency checks.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Verify handles POST /verify. Upstream rejection is reported in-band as
// {ok:false} with an opaque error string; a bad token never produces an
// error status.
func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	token, ok := h.decodeToken(w, r)
	if !ok {
		return
	}

	v, err := h.likes.Verify(r.Context(), token)
	if err != nil {
		h.logger.Warn("token verification failed",
			"reqId", middleware.GetReqID(r.Context()), "err", err)
		msg := "verify-failed"
		if errors.Is(err, yandex.ErrCaptcha) {
			msg = "smartcaptcha"
		}
		writeJSON(w, http.StatusOK, verifyResponse{OK: false, Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{OK: true, UID: v.UID, Login: v.Login})
}

// Likes handles POST /likes. The response is either the complete triple of
// collections or a single opaque error; failure detail stays in the log.
func (h *Handlers) Likes(w http.ResponseWriter, r *http.Request) {
	token, ok := h.decodeToken(w, r)
	if !ok {
		return
	}

	export, err := h.likes.Export(r.Context(), token)
	if err != nil {
		reqID := middleware.GetReqID(r.Context())
		if errors.Is(err, yandex.ErrAuth) {
			h.logger.Warn("likes export rejected", "reqId", reqID, "err", err)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "auth-failed"})
			return
		}
		h.logger.Error("likes export failed", "reqId", reqID, "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "likes-failed"})
		return
	}

	writeJSON(w, http.StatusOK, export)
}

// decodeToken reads the token body, writing a 400 response when it is
// malformed or empty. The token value itself is never logged.
func (h *Handlers) decodeToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad-request"})
		return "", false
	}
	if strings.TrimSpace(req.Token) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing-token"})
		return "", false
	}
	return req.Token, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
