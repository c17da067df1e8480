package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"fatura/internal/core"
	"fatura/internal/log"
	"fatura/internal/normalize"
)

type credentialsRequest struct {
	Email       normalize.FlexString `json:"email"`
	Password    string               `json:"password"`
	DisplayName string               `json:"display_name"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	body, err := readBody(w, r)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, badRequest(err)
	}
	req.Email = normalize.FlexString(strings.ToLower(strings.TrimSpace(req.Email.String())))
	return req, nil
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, status int, user *core.User) {
	token, err := s.deps.Tokens.Generate(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, tokenResponse{Token: token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.deps.Auth.Register(r.Context(), req.Email.String(), req.DisplayName, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "User registered",
		"component", log.ComponentAuth, "user_id", user.ID)
	s.issueToken(w, r, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.deps.Auth.Authenticate(r.Context(), req.Email.String(), req.Password)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Login failed",
			"component", log.ComponentSecurity,
			"client_ip", s.detector.ExtractClientIP(r))
		writeError(w, r, err)
		return
	}
	s.issueToken(w, r, http.StatusOK, user)
}
