// ABOUTME: Handlers for registration, login, logout and self-service profile edits
// ABOUTME: Login sets the session cookie; logout only tells the client to drop it

package server

import (
	"net/http"

	"github.com/2389/taskdesk/internal/account"
	"github.com/2389/taskdesk/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.accounts.Register(r.Context(), account.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	sendData(w, http.StatusCreated, toUserSummary(u), "registration successful")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, token, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.cookies.SetSessionCookie(w, r, token)
	sendData(w, http.StatusOK, toUserSummary(u), "login successful")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.cookies.ClearSessionCookie(w, r)
	sendData(w, http.StatusOK, nil, "logged out")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	u, err := s.accounts.Me(r.Context(), authCtx.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, toUserDTO(u), "")
}

type profileRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Avatar    *string `json:"avatar"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.accounts.UpdateProfile(r.Context(), authCtx.UserID, account.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, toUserDTO(u), "profile updated")
}

type avatarRequest struct {
	Avatar *string `json:"avatar"`
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req avatarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.accounts.UpdateAvatar(r.Context(), authCtx.UserID, req.Avatar)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, toUserDTO(u), "avatar updated")
}
