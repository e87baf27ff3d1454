package devapi

import (
	"encoding/json"
	"errors"
	"net/http"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) issueTokens(w http.ResponseWriter, status int, message string, u userRecord) {
	access, err := s.mintAccessToken(u.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign access token")
		s.writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	refresh := s.store.createRefreshToken(u.ID)

	s.writeData(w, status, authResponse{
		Token:        access,
		RefreshToken: refresh,
		User:         toUserView(u),
	}, message)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch {
	case req.Email == "":
		s.writeError(w, http.StatusBadRequest, "email cannot be empty")
		return
	case req.Password == "":
		s.writeError(w, http.StatusBadRequest, "password cannot be empty")
		return
	case req.DisplayName == "":
		s.writeError(w, http.StatusBadRequest, "display name cannot be empty")
		return
	}

	u, err := s.store.createUser(req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("user creation failed")
		s.writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}

	s.logger.Info().Str("user_id", u.ID).Str("email", u.Email).Msg("user registered")
	s.issueTokens(w, http.StatusCreated, "User created successfully", u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid credentials format")
		return
	}

	u, err := s.store.authenticate(req.Email, req.Password)
	if err != nil {
		// 400 rather than 401 so the client never mistakes bad credentials
		// for an expired session.
		s.writeError(w, http.StatusBadRequest, errBadCredentials.Error())
		return
	}

	s.logger.Info().Str("user_id", u.ID).Msg("user logged in")
	s.issueTokens(w, http.StatusOK, "", u)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		s.writeError(w, http.StatusBadRequest, "Refresh token required")
		return
	}

	userID, next, err := s.store.redeemRefreshToken(req.RefreshToken)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, errBadRefresh.Error())
		return
	}

	u, err := s.store.getUser(userID)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, errBadRefresh.Error())
		return
	}

	access, err := s.mintAccessToken(u.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign access token")
		s.writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	s.logger.Debug().Str("user_id", u.ID).Msg("session refreshed")
	s.writeData(w, http.StatusOK, authResponse{
		Token:        access,
		RefreshToken: next,
		User:         toUserView(u),
	}, "")
}
