// ABOUTME: Position persistence for job-grade descriptors
// ABOUTME: Users reference positions optionally; deleting one clears the reference

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreatePosition inserts a position and sets its ID.
// Returns ErrPositionExists if the name is taken.
func (s *SQLStore) CreatePosition(ctx context.Context, p *Position) error {
	query := `INSERT INTO positions (name, description, level) VALUES (?, ?, ?) RETURNING id`

	err := s.db.QueryRowContext(ctx, s.rebind(query), p.Name, p.Description, p.Level).Scan(&p.ID)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrPositionExists
		}
		return fmt.Errorf("inserting position: %w", err)
	}

	s.logger.Info("created position", "id", p.ID, "name", p.Name)
	return nil
}

// GetPosition retrieves a position by ID.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLStore) GetPosition(ctx context.Context, id int64) (*Position, error) {
	query := `SELECT id, name, description, level FROM positions WHERE id = ?`
	p, err := scanPosition(s.db.QueryRowContext(ctx, s.rebind(query), id))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying position: %w", err)
	}
	return p, nil
}

// ListPositions returns all positions ordered by level, then name.
func (s *SQLStore) ListPositions(ctx context.Context) ([]*Position, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, level FROM positions ORDER BY level, name`)
	if err != nil {
		return nil, fmt.Errorf("querying positions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	positions := []*Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating positions: %w", err)
	}
	return positions, nil
}

// UpdatePosition replaces name, description and level.
// Returns ErrNotFound or ErrPositionExists.
func (s *SQLStore) UpdatePosition(ctx context.Context, p *Position) error {
	query := `UPDATE positions SET name = ?, description = ?, level = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, s.rebind(query), p.Name, p.Description, p.Level, p.ID)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrPositionExists
		}
		return fmt.Errorf("updating position: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated position", "id", p.ID)
	return nil
}

// DeletePosition removes a position. Users holding it keep their accounts
// with the position cleared.
func (s *SQLStore) DeletePosition(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM positions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting position: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Info("deleted position", "id", id)
	return nil
}

func scanPosition(scanner interface{ Scan(dest ...any) error }) (*Position, error) {
	var (
		p    Position
		desc sql.NullString
	)
	if err := scanner.Scan(&p.ID, &p.Name, &desc, &p.Level); err != nil {
		return nil, err
	}
	p.Description = nullStringPtr(desc)
	return &p, nil
}
