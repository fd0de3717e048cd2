package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"kleiderkammer/internal/model"
)

// movementRecord holds everything needed to append one ledger row. OldValue
// and NewValue are marshaled to JSON when non-nil.
type movementRecord struct {
	ArticleID string
	From      *int64
	To        *int64
	Action    string
	EventType string
	OldValue  any
	NewValue  any
}

// insertMovement appends one row to the movement ledger. Callers invoke it
// inside the same transaction as the article change it records, so the two
// always commit atomically. Ledger rows are never updated or deleted.
func insertMovement(ctx context.Context, q querier, rec movementRecord) error {
	var oldJSON, newJSON any
	if rec.OldValue != nil {
		data, err := json.Marshal(rec.OldValue)
		if err != nil {
			return fmt.Errorf("encoding old value: %w", err)
		}
		oldJSON = string(data)
	}
	if rec.NewValue != nil {
		data, err := json.Marshal(rec.NewValue)
		if err != nil {
			return fmt.Errorf("encoding new value: %w", err)
		}
		newJSON = string(data)
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO movements (article_id, from_location_id, to_location_id, action, event_type, old_value, new_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ArticleID, rec.From, rec.To, rec.Action, rec.EventType, oldJSON, newJSON,
	)
	if err != nil {
		return fmt.Errorf("recording movement: %w", err)
	}
	return nil
}

// ListArticleMovements returns the most recent ledger rows for an article,
// newest first, with both endpoint locations resolved.
func ListArticleMovements(ctx context.Context, q querier, articleID string, limit int) ([]model.Movement, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT m.id, m.article_id, m.action, m.event_type, m.old_value, m.new_value, m.performed_at,
		        fl.id, fl.type, fl.name, fl.person_id,
		        tl.id, tl.type, tl.name, tl.person_id
		 FROM movements m
		 LEFT JOIN locations fl ON fl.id = m.from_location_id
		 LEFT JOIN locations tl ON tl.id = m.to_location_id
		 WHERE m.article_id = ?
		 ORDER BY m.performed_at DESC, m.id DESC
		 LIMIT ?`, articleID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		var oldValue, newValue sql.NullString
		var from, to nullableLocation
		if err := rows.Scan(&m.ID, &m.ArticleID, &m.Action, &m.EventType, &oldValue, &newValue, &m.PerformedAt,
			&from.id, &from.typ, &from.name, &from.personID,
			&to.id, &to.typ, &to.name, &to.personID); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		if oldValue.Valid {
			m.OldValue = json.RawMessage(oldValue.String)
		}
		if newValue.Valid {
			m.NewValue = json.RawMessage(newValue.String)
		}
		m.From = from.location()
		m.To = to.location()
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// nullableLocation scans a LEFT JOINed locations row that may be all NULL.
type nullableLocation struct {
	id       sql.NullInt64
	typ      sql.NullString
	name     sql.NullString
	personID sql.NullInt64
}

func (n nullableLocation) location() *model.Location {
	if !n.id.Valid {
		return nil
	}
	loc := &model.Location{ID: n.id.Int64, Type: n.typ.String, Name: n.name.String}
	if n.personID.Valid {
		id := n.personID.Int64
		loc.PersonID = &id
	}
	return loc
}
