package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-mail-gateway/mail"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
)

type emailsResponse struct {
	Messages []mail.MessageSummary `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// MeHandler reports the identity of the current session.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.gateway.CurrentIdentity(s.sessionID(r)))
	}
}

// EmailsHandler lists the most recent messages of the logged-in user. It
// must run behind RequireSessionAuth.
func (s *Server) EmailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Provider calls run to completion even if the client goes away
		ctx := context.WithoutCancel(r.Context())

		messages, err := s.gateway.ListRecentMessages(ctx, CredentialsFromContext(r.Context()))
		if err != nil {
			log.Err(err).Msg("Failed to fetch emails")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch emails"})
			return
		}
		writeJSON(w, http.StatusOK, emailsResponse{Messages: messages})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}
