package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"kleiderkammer/internal/model"
)

// PersonChanges is a partial update for a person.
type PersonChanges struct {
	FirstName *string
	LastName  *string
	Status    *string
}

// CreatePerson creates a person together with their dedicated location row,
// named after the person, in one transaction.
func CreatePerson(ctx context.Context, db *sql.DB, firstName, lastName string) (*model.Person, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name required", model.ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO persons (first_name, last_name) VALUES (?, ?)`,
		firstName, lastName,
	)
	if err != nil {
		return nil, fmt.Errorf("creating person: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting person id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO locations (type, name, person_id) VALUES (?, ?, ?)`,
		model.LocationPerson, firstName+" "+lastName, id,
	)
	if err != nil {
		return nil, fmt.Errorf("creating person location: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing person creation: %w", err)
	}

	return GetPerson(ctx, db, id)
}

// GetPerson returns a person by ID, including their active article count.
func GetPerson(ctx context.Context, db *sql.DB, id int64) (*model.Person, error) {
	p := &model.Person{}
	err := db.QueryRowContext(ctx,
		`SELECT p.id, p.first_name, p.last_name, p.status, p.created_at,
			(SELECT COUNT(*) FROM articles a
			 JOIN locations l ON l.id = a.location_id
			 WHERE a.active = 1 AND l.person_id = p.id)
		 FROM persons p WHERE p.id = ?`, id,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Status, &p.CreatedAt, &p.ArticleCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: person not found", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting person: %w", err)
	}
	return p, nil
}

// ListPersons returns all persons ordered by name, each with their active
// article count.
func ListPersons(ctx context.Context, db *sql.DB) ([]model.Person, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT p.id, p.first_name, p.last_name, p.status, p.created_at,
			(SELECT COUNT(*) FROM articles a
			 JOIN locations l ON l.id = a.location_id
			 WHERE a.active = 1 AND l.person_id = p.id)
		 FROM persons p
		 ORDER BY lower(p.last_name), lower(p.first_name)`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing persons: %w", err)
	}
	defer rows.Close()

	var persons []model.Person
	for rows.Next() {
		var p model.Person
		err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Status, &p.CreatedAt, &p.ArticleCount)
		if err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// UpdatePerson applies a partial update. The current row is read inside
// the same transaction as the write so untouched fields cannot be
// resurrected from a stale read. Renaming a person also renames their
// location row so ledger views stay readable.
func UpdatePerson(ctx context.Context, db *sql.DB, id int64, changes PersonChanges) (*model.Person, error) {
	if changes.FirstName == nil && changes.LastName == nil && changes.Status == nil {
		return nil, fmt.Errorf("%w: no changes submitted", model.ErrValidation)
	}
	if changes.Status != nil &&
		*changes.Status != model.PersonActive && *changes.Status != model.PersonInactive {
		return nil, fmt.Errorf("%w: invalid status %q", model.ErrValidation, *changes.Status)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var firstName, lastName, status string
	err = tx.QueryRowContext(ctx,
		`SELECT first_name, last_name, status FROM persons WHERE id = ?`, id,
	).Scan(&firstName, &lastName, &status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: person not found", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting person: %w", err)
	}

	if changes.FirstName != nil {
		trimmed := strings.TrimSpace(*changes.FirstName)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: first name may not be empty", model.ErrValidation)
		}
		firstName = trimmed
	}
	if changes.LastName != nil {
		trimmed := strings.TrimSpace(*changes.LastName)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: last name may not be empty", model.ErrValidation)
		}
		lastName = trimmed
	}
	if changes.Status != nil {
		status = *changes.Status
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE persons SET first_name = ?, last_name = ?, status = ? WHERE id = ?`,
		firstName, lastName, status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating person: %w", err)
	}

	if changes.FirstName != nil || changes.LastName != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE locations SET name = ? WHERE person_id = ?`,
			firstName+" "+lastName, id,
		)
		if err != nil {
			return nil, fmt.Errorf("renaming person location: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing person update: %w", err)
	}

	return GetPerson(ctx, db, id)
}

// DeletePerson removes a person. Fails while the person still holds active
// articles. The article count check and the delete run in one transaction
// so a concurrent assignment cannot slip in between them. The location row
// survives the deletion so past ledger rows keep their names.
func DeletePerson(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles a
		 JOIN locations l ON l.id = a.location_id
		 WHERE a.active = 1 AND l.person_id = ?`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking person articles: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: person still has assigned articles", model.ErrConflict)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM persons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: person not found", model.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing person deletion: %w", err)
	}
	return nil
}
