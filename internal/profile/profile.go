// ABOUTME: Profile change request workflow: submit, list and admin review
// ABOUTME: Review is a single pending-to-terminal transition that also applies approved names

package profile

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/store"
)

var tracer = otel.Tracer("github.com/2389/taskdesk/internal/profile")

// Store defines the persistence operations the workflow needs.
type Store interface {
	CreateProfileRequest(ctx context.Context, r *store.ProfileChangeRequest) error
	ListProfileRequests(ctx context.Context, f store.ProfileRequestFilter) ([]*store.ProfileChangeRequest, error)
	ReviewProfileRequest(ctx context.Context, p store.ReviewParams) (*store.ProfileChangeRequest, error)
	AppendAuditLog(ctx context.Context, e *store.AuditEntry) error
}

// Action is an admin's decision on a pending request.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

const (
	msgNamesRequired  = "first name and last name are required"
	msgInvalidAction  = "action must be approve or reject"
	msgInvalidStatus  = "status must be pending, approved or rejected"
	msgNotReviewable  = "request not found or already processed"
	msgInvalidRequest = "request id is required"
)

// Service runs the profile change workflow.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a profile workflow service.
func NewService(s Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, logger: logger, now: time.Now}
}

// Submit records a pending request for userID to change their names.
// Any number of pending requests per user may coexist.
func (s *Service) Submit(ctx context.Context, userID int64, firstName, lastName string) (*store.ProfileChangeRequest, error) {
	first := strings.TrimSpace(firstName)
	last := strings.TrimSpace(lastName)
	if first == "" || last == "" {
		return nil, apperr.Validation(msgNamesRequired)
	}

	req := &store.ProfileChangeRequest{
		UserID:    userID,
		FirstName: first,
		LastName:  last,
	}
	if err := s.store.CreateProfileRequest(ctx, req); err != nil {
		return nil, apperr.Internal(err)
	}
	return req, nil
}

// ListForUser returns userID's own requests, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*store.ProfileChangeRequest, error) {
	reqs, err := s.store.ListProfileRequests(ctx, store.ProfileRequestFilter{UserID: &userID})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return reqs, nil
}

// List returns every request, optionally narrowed to one status.
// An empty status matches all.
func (s *Service) List(ctx context.Context, status string) ([]*store.ProfileChangeRequest, error) {
	var filter store.ProfileRequestFilter
	if status != "" {
		st := store.RequestStatus(status)
		if st != store.RequestPending && !st.Terminal() {
			return nil, apperr.Validation(msgInvalidStatus)
		}
		filter.Status = &st
	}

	reqs, err := s.store.ListProfileRequests(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return reqs, nil
}

// ReviewInput is an admin's decision on one request.
type ReviewInput struct {
	RequestID    int64
	ReviewerID   int64
	Action       Action
	RejectReason string
}

// Review approves or rejects a pending request. Approval copies the
// proposed names onto the user in the same transaction. A request that is
// missing or no longer pending yields NotFound; of two racing reviews
// exactly one succeeds.
func (s *Service) Review(ctx context.Context, in ReviewInput) (*store.ProfileChangeRequest, error) {
	ctx, span := tracer.Start(ctx, "profile.Review")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("taskdesk.request_id", in.RequestID),
		attribute.Int64("taskdesk.reviewer_id", in.ReviewerID),
		attribute.String("taskdesk.action", string(in.Action)),
	)

	if in.RequestID <= 0 {
		return nil, apperr.Validation(msgInvalidRequest)
	}

	params := store.ReviewParams{
		RequestID:  in.RequestID,
		ReviewerID: in.ReviewerID,
		ReviewedAt: s.now(),
	}
	var auditAction store.AuditAction
	switch in.Action {
	case ActionApprove:
		params.Outcome = store.RequestApproved
		auditAction = store.AuditApproveRequest
	case ActionReject:
		params.Outcome = store.RequestRejected
		auditAction = store.AuditRejectRequest
		if reason := strings.TrimSpace(in.RejectReason); reason != "" {
			params.RejectReason = &reason
		}
	default:
		return nil, apperr.Validation(msgInvalidAction)
	}

	req, err := s.store.ReviewProfileRequest(ctx, params)
	if errors.Is(err, store.ErrNotFound) {
		span.SetStatus(codes.Error, msgNotReviewable)
		return nil, apperr.Wrap(apperr.KindNotFound, msgNotReviewable, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "review failed")
		return nil, apperr.Internal(err)
	}

	detail := map[string]any{
		"user_id":    req.UserID,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
	}
	if req.RejectReason != nil {
		detail["reject_reason"] = *req.RejectReason
	}
	if err := s.store.AppendAuditLog(ctx, &store.AuditEntry{
		ActorUserID: in.ReviewerID,
		Action:      auditAction,
		TargetType:  "profile_request",
		TargetID:    strconv.FormatInt(req.ID, 10),
		Detail:      detail,
	}); err != nil {
		s.logger.Warn("failed to append audit entry", "action", auditAction, "error", err)
	}

	return req, nil
}
