// ABOUTME: Tests for the profile change workflow against a real SQLite store
// ABOUTME: Walks the submit, approve and reject paths including repeated reviews

package profile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/store"
)

func setupService(t *testing.T) (*Service, *store.SQLStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s, nil), s
}

func createUser(t *testing.T, s *store.SQLStore, username string, role store.Role) *store.User {
	t.Helper()
	u := &store.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "Old",
		LastName:     "Name",
		Role:         role,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestSubmit(t *testing.T) {
	svc, s := setupService(t)
	u := createUser(t, s, "anna", store.RoleMember)

	req, err := svc.Submit(context.Background(), u.ID, "  Анна ", " Смирнова")
	require.NoError(t, err)
	assert.Equal(t, "Анна", req.FirstName)
	assert.Equal(t, "Смирнова", req.LastName)
	assert.Equal(t, store.RequestPending, req.Status)

	_, err = svc.Submit(context.Background(), u.ID, "Анна", "   ")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSubmit_MultiplePendingAllowed(t *testing.T) {
	svc, s := setupService(t)
	u := createUser(t, s, "anna", store.RoleMember)

	_, err := svc.Submit(context.Background(), u.ID, "A", "B")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), u.ID, "C", "D")
	require.NoError(t, err)

	mine, err := svc.ListForUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestReview_ApproveScenario(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna", store.RoleMember)
	admin := createUser(t, s, "admin", store.RoleAdmin)

	req, err := svc.Submit(ctx, anna.ID, "Анна", "Смирнова")
	require.NoError(t, err)

	// Names are untouched until review.
	before, err := s.GetUser(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", before.FirstName)

	reviewed, err := svc.Review(ctx, ReviewInput{RequestID: req.ID, ReviewerID: admin.ID, Action: ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, store.RequestApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, admin.ID, *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	after, err := s.GetUser(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, "Анна", after.FirstName)
	assert.Equal(t, "Смирнова", after.LastName)

	// A second review of the same request is refused.
	_, err = svc.Review(ctx, ReviewInput{RequestID: req.ID, ReviewerID: admin.ID, Action: ActionReject})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, msgNotReviewable, apperr.PublicMessage(err))

	entries, err := s.ListAuditLog(ctx, store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.AuditApproveRequest, entries[0].Action)
	assert.Equal(t, admin.ID, entries[0].ActorUserID)
}

func TestReview_Reject(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna", store.RoleMember)
	admin := createUser(t, s, "admin", store.RoleAdmin)

	req, err := svc.Submit(ctx, anna.ID, "Анна", "Смирнова")
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, ReviewInput{
		RequestID:    req.ID,
		ReviewerID:   admin.ID,
		Action:       ActionReject,
		RejectReason: "  please use your legal name ",
	})
	require.NoError(t, err)
	assert.Equal(t, store.RequestRejected, reviewed.Status)
	require.NotNil(t, reviewed.RejectReason)
	assert.Equal(t, "please use your legal name", *reviewed.RejectReason)

	user, err := s.GetUser(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", user.FirstName, "rejection must not touch the user")
}

func TestReview_BlankReasonStoredAsNull(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna", store.RoleMember)
	admin := createUser(t, s, "admin", store.RoleAdmin)

	req, err := svc.Submit(ctx, anna.ID, "A", "B")
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, ReviewInput{RequestID: req.ID, ReviewerID: admin.ID, Action: ActionReject, RejectReason: "   "})
	require.NoError(t, err)
	assert.Nil(t, reviewed.RejectReason)
}

func TestReview_Invalid(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	admin := createUser(t, s, "admin", store.RoleAdmin)

	_, err := svc.Review(ctx, ReviewInput{RequestID: 1, ReviewerID: admin.ID, Action: "archive"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Review(ctx, ReviewInput{RequestID: 0, ReviewerID: admin.ID, Action: ActionApprove})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Review(ctx, ReviewInput{RequestID: 999, ReviewerID: admin.ID, Action: ActionApprove})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestList_StatusFilter(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna", store.RoleMember)
	admin := createUser(t, s, "admin", store.RoleAdmin)

	first, err := svc.Submit(ctx, anna.ID, "A", "B")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, anna.ID, "C", "D")
	require.NoError(t, err)
	_, err = svc.Review(ctx, ReviewInput{RequestID: first.ID, ReviewerID: admin.ID, Action: ActionApprove})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "C", pending[0].FirstName)

	_, err = svc.List(ctx, "archived")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
