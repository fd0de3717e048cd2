package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"kleiderkammer/internal/model"
	"kleiderkammer/internal/notes"
	"kleiderkammer/internal/timeline"
)

// movementHistoryLimit is how many ledger rows the article detail view carries.
const movementHistoryLimit = 3

// articleColumns is the column list shared by all article queries.
const articleColumns = `a.id, a.category, a.label, a.size, a.notes,
	a.expiry_date, a.helmet_next_check, a.helmet_last_check, a.helmet_manufactured_at,
	a.active, a.created_at, a.updated_at,
	l.id, l.type, l.name, l.person_id,
	(SELECT m.performed_at FROM movements m
	 WHERE m.article_id = a.id
	 ORDER BY m.performed_at DESC, m.id DESC LIMIT 1)`

// CreateArticleParams carries the fields of a new article.
type CreateArticleParams struct {
	ID                   string
	Category             string
	Label                string
	Size                 *string
	Notes                *string
	LocationType         string
	PersonID             *int64
	ExpiryDate           *string
	HelmetManufacturedAt *string
}

// ArticleChanges is a partial update: nil fields are untouched, non-nil
// fields are applied (an empty string clears nullable text fields).
type ArticleChanges struct {
	Category             *string
	Label                *string
	Size                 *string
	ExpiryDate           *string
	HelmetNextCheck      *string
	HelmetLastCheck      *string
	HelmetManufacturedAt *string
}

// CreateArticle inserts a new article at the requested location and writes
// the opening ledger row, both in one transaction. For helmets the expiry
// date is always derived from the manufacture date, overriding any supplied
// value.
func CreateArticle(ctx context.Context, db *sql.DB, p CreateArticleParams) (*model.Article, error) {
	id := model.NormalizeArticleID(p.ID)
	category := strings.TrimSpace(p.Category)
	if id == "" || category == "" {
		return nil, fmt.Errorf("%w: article id and category required", model.ErrValidation)
	}

	label := strings.TrimSpace(p.Label)
	if label == "" {
		label = category
	}

	var size *string
	if p.Size != nil {
		if trimmed := strings.TrimSpace(*p.Size); trimmed != "" {
			size = &trimmed
		}
	}

	expiry, err := model.NormalizeDate(p.ExpiryDate, "expiry date")
	if err != nil {
		return nil, err
	}

	var manufacturedAt *string
	if model.IsHelmetCategory(category) {
		manufacturedAt, err = model.NormalizeDate(p.HelmetManufacturedAt, "manufacture date")
		if err != nil {
			return nil, err
		}
		if manufacturedAt == nil {
			return nil, fmt.Errorf("%w: manufacture date required for helmets", model.ErrValidation)
		}
		forced, err := model.HelmetExpiry(*manufacturedAt)
		if err != nil {
			return nil, fmt.Errorf("computing helmet expiry: %w", err)
		}
		expiry = &forced
	}

	var noteBlob *string
	if p.Notes != nil {
		if blob := notes.Append(*p.Notes, "", time.Now()); blob != "" {
			noteBlob = &blob
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking article id: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("%w: article %s already exists", model.ErrConflict, id)
	}

	target, err := resolveTarget(ctx, tx, p.LocationType, p.PersonID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO articles (id, category, label, size, notes, expiry_date, helmet_manufactured_at, location_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, category, label, size, noteBlob, expiry, manufacturedAt, target.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating article: %w", err)
	}

	err = insertMovement(ctx, tx, movementRecord{
		ArticleID: id,
		To:        &target.ID,
		Action:    model.ActionCreate,
		EventType: model.EventCreate,
		NewValue:  map[string]*string{"category": &category, "size": size},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing article creation: %w", err)
	}

	return GetArticle(ctx, db, id)
}

// GetArticle returns an active article with its derived status, warning,
// recent movement history, decoded notes, and merged timeline.
func GetArticle(ctx context.Context, db *sql.DB, id string) (*model.Article, error) {
	article, err := fetchArticle(ctx, db, model.NormalizeArticleID(id))
	if err != nil {
		return nil, err
	}

	article.MovementHistory, err = ListArticleMovements(ctx, db, article.ID, movementHistoryLimit)
	if err != nil {
		return nil, err
	}
	article.NoteEntries = notes.Decode(article.Notes)
	article.Timeline = timeline.Build(article)

	return article, nil
}

// ListArticles returns all active articles with derived status, optionally
// restricted to articles currently held by a person.
func ListArticles(ctx context.Context, db *sql.DB, assignedOnly bool) ([]model.Article, error) {
	query := `SELECT ` + articleColumns + `
		 FROM articles a
		 JOIN locations l ON l.id = a.location_id
		 WHERE a.active = 1`
	if assignedOnly {
		query += ` AND l.type = 'person'`
	}
	query += ` ORDER BY a.id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// ListPersonArticles returns the active articles currently held by a person.
func ListPersonArticles(ctx context.Context, db *sql.DB, personID int64) ([]model.Article, error) {
	if _, err := GetPerson(ctx, db, personID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+articleColumns+`
		 FROM articles a
		 JOIN locations l ON l.id = a.location_id
		 WHERE a.active = 1 AND l.type = 'person' AND l.person_id = ?
		 ORDER BY a.id`, personID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing person articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// articleFieldColumns maps updatable columns to their wire names, used for
// the audit diff carried on "update" ledger rows.
var articleFieldColumns = map[string]string{
	"category":               "category",
	"label":                  "label",
	"size":                   "size",
	"notes":                  "notes",
	"expiry_date":            "expiryDate",
	"helmet_next_check":      "helmetNextCheck",
	"helmet_last_check":      "helmetLastCheck",
	"helmet_manufactured_at": "helmetManufacturedAt",
}

// UpdateArticle applies a partial update under a transaction. The helmet
// rule is re-enforced against the post-change category, a supplied note is
// appended to the note history, and an "update" ledger row carrying the
// old/new diff is written when any column changed. Touching zero recognized
// fields is a validation error.
func UpdateArticle(ctx context.Context, db *sql.DB, id string, changes ArticleChanges, note *string) (*model.Article, error) {
	id = model.NormalizeArticleID(id)

	// Column -> new value; a nil value clears the column.
	fields := map[string]*string{}

	if changes.Category != nil {
		category := strings.TrimSpace(*changes.Category)
		if category == "" {
			return nil, fmt.Errorf("%w: category may not be empty", model.ErrValidation)
		}
		fields["category"] = &category
	}
	if changes.Label != nil {
		label := strings.TrimSpace(*changes.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: label may not be empty", model.ErrValidation)
		}
		fields["label"] = &label
	}
	if changes.Size != nil {
		if trimmed := strings.TrimSpace(*changes.Size); trimmed != "" {
			fields["size"] = &trimmed
		} else {
			fields["size"] = nil
		}
	}

	dateFields := []struct {
		column string
		label  string
		value  *string
	}{
		{"expiry_date", "expiry date", changes.ExpiryDate},
		{"helmet_next_check", "next check", changes.HelmetNextCheck},
		{"helmet_last_check", "last check", changes.HelmetLastCheck},
		{"helmet_manufactured_at", "manufacture date", changes.HelmetManufacturedAt},
	}
	for _, f := range dateFields {
		if f.value == nil {
			continue
		}
		normalized, err := model.NormalizeDate(f.value, f.label)
		if err != nil {
			return nil, err
		}
		fields[f.column] = normalized
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no changes submitted", model.ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := fetchArticle(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	// Re-enforce the helmet rule against the post-change state.
	resultingCategory := current.Category
	if v, ok := fields["category"]; ok && v != nil {
		resultingCategory = *v
	}
	resultingManufacturedAt := current.HelmetManufacturedAt
	if v, ok := fields["helmet_manufactured_at"]; ok {
		resultingManufacturedAt = v
	}
	if model.IsHelmetCategory(resultingCategory) {
		if resultingManufacturedAt == nil {
			return nil, fmt.Errorf("%w: manufacture date required for helmets", model.ErrValidation)
		}
		forced, err := model.HelmetExpiry(*resultingManufacturedAt)
		if err != nil {
			return nil, fmt.Errorf("computing helmet expiry: %w", err)
		}
		fields["expiry_date"] = &forced
	}

	if note != nil && strings.TrimSpace(*note) != "" {
		existing := ""
		if current.Notes != nil {
			existing = *current.Notes
		}
		blob := notes.Append(*note, existing, time.Now())
		fields["notes"] = &blob
	}

	update := sq.Update("articles").
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": id})
	for column, value := range fields {
		if value == nil {
			update = update.Set(column, nil)
		} else {
			update = update.Set(column, *value)
		}
	}

	query, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("updating article: %w", err)
	}

	oldValues, newValues := articleDiff(fields, current)
	if len(oldValues) > 0 || len(newValues) > 0 {
		err = insertMovement(ctx, tx, movementRecord{
			ArticleID: id,
			From:      &current.Location.ID,
			To:        &current.Location.ID,
			Action:    model.ActionUpdate,
			EventType: model.EventUpdate,
			OldValue:  oldValues,
			NewValue:  newValues,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing article update: %w", err)
	}

	return GetArticle(ctx, db, id)
}

// articleDiff builds the old/new snapshots for the touched columns, keyed
// by wire field name.
func articleDiff(fields map[string]*string, current *model.Article) (before, after map[string]*string) {
	if len(fields) == 0 {
		return nil, nil
	}

	currentValues := map[string]*string{
		"category":               &current.Category,
		"label":                  &current.Label,
		"size":                   current.Size,
		"notes":                  current.Notes,
		"expiry_date":            current.ExpiryDate,
		"helmet_next_check":      current.HelmetNextCheck,
		"helmet_last_check":      current.HelmetLastCheck,
		"helmet_manufactured_at": current.HelmetManufacturedAt,
	}

	before = map[string]*string{}
	after = map[string]*string{}
	for column, value := range fields {
		key := articleFieldColumns[column]
		before[key] = currentValues[column]
		after[key] = value
	}
	return before, after
}

// AssignArticle relocates an article to storage or to a person's location.
// Assigning to the location the article already sits at is a no-op: the
// current view is returned and no ledger row is written.
func AssignArticle(ctx context.Context, db *sql.DB, id, targetType string, personID *int64) (*model.Article, error) {
	id = model.NormalizeArticleID(id)

	if targetType != model.LocationStorage && targetType != model.LocationPerson {
		return nil, fmt.Errorf("%w: invalid target type %q", model.ErrValidation, targetType)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := fetchArticle(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	target, err := resolveTarget(ctx, tx, targetType, personID)
	if err != nil {
		return nil, err
	}

	if target.ID == current.Location.ID {
		tx.Rollback()
		return GetArticle(ctx, db, id)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE articles SET location_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		target.ID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("relocating article: %w", err)
	}

	action := model.ActionTransferToStorage
	if targetType == model.LocationPerson {
		action = model.ActionTransferToPerson
	}
	err = insertMovement(ctx, tx, movementRecord{
		ArticleID: id,
		From:      &current.Location.ID,
		To:        &target.ID,
		Action:    action,
		EventType: model.EventTransfer,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transfer: %w", err)
	}

	return GetArticle(ctx, db, id)
}

// CompleteHelmetCheck records a completed helmet check: the last-check date
// becomes the performed date (today when omitted) and the next check falls
// due two years later. Non-helmet articles are rejected.
func CompleteHelmetCheck(ctx context.Context, db *sql.DB, id string, performedDate *string) (*model.Article, error) {
	id = model.NormalizeArticleID(id)

	performed, err := model.NormalizeDate(performedDate, "check date")
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := fetchArticle(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !model.IsHelmetCategory(current.Category) {
		return nil, fmt.Errorf("%w: checks can only be recorded for helmets", model.ErrCategoryMismatch)
	}

	last, next, err := model.HelmetCheckDates(performed, time.Now())
	if err != nil {
		return nil, fmt.Errorf("computing check dates: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE articles SET helmet_last_check = ?, helmet_next_check = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		last, next, id,
	)
	if err != nil {
		return nil, fmt.Errorf("recording helmet check: %w", err)
	}

	err = insertMovement(ctx, tx, movementRecord{
		ArticleID: id,
		From:      &current.Location.ID,
		To:        &current.Location.ID,
		Action:    model.ActionCertification,
		EventType: model.EventCertification,
		OldValue: map[string]*string{
			"helmetLastCheck": current.HelmetLastCheck,
			"helmetNextCheck": current.HelmetNextCheck,
		},
		NewValue: map[string]*string{
			"helmetLastCheck": &last,
			"helmetNextCheck": &next,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing helmet check: %w", err)
	}

	return GetArticle(ctx, db, id)
}

// RetireArticle soft-deletes an article. The row stays for ledger history
// but disappears from every listing and lookup. Retiring an already
// inactive or missing article is a not-found error.
func RetireArticle(ctx context.Context, db *sql.DB, id string) error {
	id = model.NormalizeArticleID(id)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var locationID int64
	var active bool
	err = tx.QueryRowContext(ctx,
		`SELECT location_id, active FROM articles WHERE id = ?`, id,
	).Scan(&locationID, &active)
	if err == sql.ErrNoRows || (err == nil && !active) {
		return fmt.Errorf("%w: article not found", model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("getting article: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE articles SET active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("retiring article: %w", err)
	}

	err = insertMovement(ctx, tx, movementRecord{
		ArticleID: id,
		From:      &locationID,
		To:        &locationID,
		Action:    model.ActionRetire,
		EventType: model.EventRetire,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing retirement: %w", err)
	}
	return nil
}

// fetchArticle loads one active article row with its location and derived
// status. Works inside or outside a transaction.
func fetchArticle(ctx context.Context, q querier, id string) (*model.Article, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+articleColumns+`
		 FROM articles a
		 JOIN locations l ON l.id = a.location_id
		 WHERE a.id = ? AND a.active = 1`, id,
	)

	article, err := scanArticle(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: article not found", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}
	return article, nil
}

func scanArticles(rows *sql.Rows) ([]model.Article, error) {
	var articles []model.Article
	for rows.Next() {
		article, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, *article)
	}
	return articles, rows.Err()
}

// scanArticle reads one article row (see articleColumns) and derives its
// status and warning.
func scanArticle(scan func(dest ...any) error) (*model.Article, error) {
	article := &model.Article{Location: &model.Location{}}
	var size, noteBlob, expiry, nextCheck, lastCheck, manufacturedAt sql.NullString
	var personID sql.NullInt64
	var lastMovement sql.NullTime

	err := scan(
		&article.ID, &article.Category, &article.Label, &size, &noteBlob,
		&expiry, &nextCheck, &lastCheck, &manufacturedAt,
		&article.Active, &article.CreatedAt, &article.UpdatedAt,
		&article.Location.ID, &article.Location.Type, &article.Location.Name, &personID,
		&lastMovement,
	)
	if err != nil {
		return nil, err
	}

	article.Size = nullableString(size)
	article.Notes = nullableString(noteBlob)
	article.ExpiryDate = nullableString(expiry)
	article.HelmetNextCheck = nullableString(nextCheck)
	article.HelmetLastCheck = nullableString(lastCheck)
	article.HelmetManufacturedAt = nullableString(manufacturedAt)
	if personID.Valid {
		id := personID.Int64
		article.Location.PersonID = &id
	}

	assignedAt := article.UpdatedAt
	if lastMovement.Valid {
		assignedAt = lastMovement.Time
	}
	article.AssignedAt = &assignedAt

	article.Status, article.Warning = model.DeriveStatus(article, time.Now())
	return article, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
