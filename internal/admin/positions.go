// ABOUTME: Position management: public listing plus admin create, update and delete
// ABOUTME: Duplicate names are conflicts; every mutation is audited

package admin

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/store"
)

// PositionStore defines the interface for position operations
type PositionStore interface {
	CreatePosition(ctx context.Context, p *store.Position) error
	ListPositions(ctx context.Context) ([]*store.Position, error)
	UpdatePosition(ctx context.Context, p *store.Position) error
	DeletePosition(ctx context.Context, id int64) error
	AppendAuditLog(ctx context.Context, e *store.AuditEntry) error
}

const (
	msgPositionFieldsRequired = "name and level are required"
	msgPositionLevel          = "level must be at least 1"
	msgPositionIDRequired     = "position id is required"
	msgPositionExists         = "position with this name already exists"
	msgPositionNotFound       = "position not found"
)

// PositionService manages job positions
type PositionService struct {
	store  PositionStore
	logger *slog.Logger
}

// NewPositionService creates a PositionService
func NewPositionService(s PositionStore, logger *slog.Logger) *PositionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PositionService{store: s, logger: logger.With("component", "admin.positions")}
}

// PositionInput carries a full position definition. ID is ignored on create.
type PositionInput struct {
	ID          int64
	Name        string
	Description *string
	Level       int
}

// List returns all positions ordered by level, then name
func (s *PositionService) List(ctx context.Context) ([]*store.Position, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return positions, nil
}

// Create adds a position
func (s *PositionService) Create(ctx context.Context, in PositionInput) (*store.Position, error) {
	authCtx := auth.MustFromContext(ctx)

	p, err := validatePosition(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePosition(ctx, p); err != nil {
		return nil, mapPositionError(err)
	}

	appendAudit(ctx, s.store, s.logger, &store.AuditEntry{
		ActorUserID: authCtx.UserID,
		Action:      store.AuditCreatePosition,
		TargetType:  "position",
		TargetID:    strconv.FormatInt(p.ID, 10),
		Detail:      map[string]any{"name": p.Name, "level": p.Level},
	})
	return p, nil
}

// Update replaces a position's name, description and level
func (s *PositionService) Update(ctx context.Context, in PositionInput) (*store.Position, error) {
	authCtx := auth.MustFromContext(ctx)

	if in.ID <= 0 {
		return nil, apperr.Validation(msgPositionIDRequired)
	}
	p, err := validatePosition(in)
	if err != nil {
		return nil, err
	}
	p.ID = in.ID
	if err := s.store.UpdatePosition(ctx, p); err != nil {
		return nil, mapPositionError(err)
	}

	appendAudit(ctx, s.store, s.logger, &store.AuditEntry{
		ActorUserID: authCtx.UserID,
		Action:      store.AuditUpdatePosition,
		TargetType:  "position",
		TargetID:    strconv.FormatInt(p.ID, 10),
		Detail:      map[string]any{"name": p.Name, "level": p.Level},
	})
	return p, nil
}

// Delete removes a position. Users holding it have the reference cleared.
func (s *PositionService) Delete(ctx context.Context, id int64) error {
	authCtx := auth.MustFromContext(ctx)

	if id <= 0 {
		return apperr.Validation(msgPositionIDRequired)
	}
	if err := s.store.DeletePosition(ctx, id); err != nil {
		return mapPositionError(err)
	}

	appendAudit(ctx, s.store, s.logger, &store.AuditEntry{
		ActorUserID: authCtx.UserID,
		Action:      store.AuditDeletePosition,
		TargetType:  "position",
		TargetID:    strconv.FormatInt(id, 10),
	})
	return nil
}

func validatePosition(in PositionInput) (*store.Position, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Level == 0 {
		return nil, apperr.Validation(msgPositionFieldsRequired)
	}
	if in.Level < 1 {
		return nil, apperr.Validation(msgPositionLevel)
	}
	p := &store.Position{Name: name, Level: in.Level}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			p.Description = &d
		}
	}
	return p, nil
}

func mapPositionError(err error) error {
	switch {
	case errors.Is(err, store.ErrPositionExists):
		return apperr.Wrap(apperr.KindConflict, msgPositionExists, err)
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(msgPositionNotFound)
	default:
		return apperr.Internal(err)
	}
}
