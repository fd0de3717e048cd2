package store

import (
	"context"
	"database/sql"
	"fmt"

	"kleiderkammer/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx so that lookups can run
// inside or outside a transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StorageLocation returns the storage singleton. It is seeded at schema
// creation and never deleted, so a missing row is a setup error.
func StorageLocation(ctx context.Context, q querier) (*model.Location, error) {
	loc := &model.Location{}
	err := q.QueryRowContext(ctx,
		`SELECT id, type, name, person_id FROM locations WHERE type = 'storage' ORDER BY id ASC LIMIT 1`,
	).Scan(&loc.ID, &loc.Type, &loc.Name, &loc.PersonID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("storage location missing, database not initialized")
	}
	if err != nil {
		return nil, fmt.Errorf("getting storage location: %w", err)
	}
	return loc, nil
}

// PersonLocation returns the 1:1 location of a person.
func PersonLocation(ctx context.Context, q querier, personID int64) (*model.Location, error) {
	loc := &model.Location{}
	err := q.QueryRowContext(ctx,
		`SELECT id, type, name, person_id FROM locations WHERE type = 'person' AND person_id = ?`,
		personID,
	).Scan(&loc.ID, &loc.Type, &loc.Name, &loc.PersonID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: person not found", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting person location: %w", err)
	}
	return loc, nil
}

// resolveTarget maps an assignment target to a location row. A person
// target without a person id is a validation error.
func resolveTarget(ctx context.Context, q querier, targetType string, personID *int64) (*model.Location, error) {
	switch targetType {
	case model.LocationStorage:
		return StorageLocation(ctx, q)
	case model.LocationPerson:
		if personID == nil {
			return nil, fmt.Errorf("%w: person id required", model.ErrValidation)
		}
		return PersonLocation(ctx, q, *personID)
	default:
		return nil, fmt.Errorf("%w: invalid target type %q", model.ErrValidation, targetType)
	}
}
