// ABOUTME: Handlers for submitting, listing and reviewing profile change requests
// ABOUTME: Review takes {action, reject_reason} and reports 404 for already-processed requests

package server

import (
	"net/http"

	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/profile"
	"github.com/2389/taskdesk/internal/store"
)

type submitProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleSubmitProfileRequest(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req submitProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.profiles.Submit(r.Context(), authCtx.UserID, req.FirstName, req.LastName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusCreated, toProfileRequestDTO(created), "request submitted for review")
}

func (s *Server) handleListMyProfileRequests(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	reqs, err := s.profiles.ListForUser(r.Context(), authCtx.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendList(w, toProfileRequestDTOs(reqs), len(reqs))
}

func (s *Server) handleListProfileRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.profiles.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendList(w, toProfileRequestDTOs(reqs), len(reqs))
}

type reviewProfileRequest struct {
	Action       string `json:"action"`
	RejectReason string `json:"reject_reason"`
}

func (s *Server) handleReviewProfileRequest(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req reviewProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	reviewed, err := s.profiles.Review(r.Context(), profile.ReviewInput{
		RequestID:    id,
		ReviewerID:   authCtx.UserID,
		Action:       profile.Action(req.Action),
		RejectReason: req.RejectReason,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	message := "request rejected"
	if reviewed.Status == store.RequestApproved {
		message = "request approved"
	}
	sendData(w, http.StatusOK, toProfileRequestDTO(reviewed), message)
}
