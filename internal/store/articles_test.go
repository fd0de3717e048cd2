package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kleiderkammer/internal/db"
	"kleiderkammer/internal/model"
)

func strptr(s string) *string { return &s }

func TestCreateArticleInStorage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, err := CreateArticle(ctx, database, CreateArticleParams{
		ID:           "123",
		Category:     "Jacke",
		Size:         strptr("M"),
		LocationType: model.LocationStorage,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	if article.ID != "000000123" {
		t.Errorf("expected normalized id '000000123', got %q", article.ID)
	}
	if article.Label != "Jacke" {
		t.Errorf("expected label to default to category, got %q", article.Label)
	}
	if article.Status != model.StatusInStorage {
		t.Errorf("expected status %q, got %q", model.StatusInStorage, article.Status)
	}
	if len(article.MovementHistory) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(article.MovementHistory))
	}
	if article.MovementHistory[0].Action != model.ActionCreate {
		t.Errorf("expected create movement, got %q", article.MovementHistory[0].Action)
	}
}

func TestCreateArticleDuplicateID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	params := CreateArticleParams{ID: "42", Category: "Hose", LocationType: model.LocationStorage}
	if _, err := CreateArticle(ctx, database, params); err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	// Same digits with different formatting normalize to the same id.
	params.ID = "ART-42"
	_, err := CreateArticle(ctx, database, params)
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestCreateHelmetForcesExpiry(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, err := CreateArticle(ctx, database, CreateArticleParams{
		ID:                   "555",
		Category:             "Helm",
		LocationType:         model.LocationStorage,
		ExpiryDate:           strptr("2099-12-31"),
		HelmetManufacturedAt: strptr("2020-01-01"),
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	if article.ExpiryDate == nil || *article.ExpiryDate != "2030-01-01" {
		t.Errorf("expected expiry forced to 2030-01-01, got %v", article.ExpiryDate)
	}
}

func TestCreateHelmetRequiresManufactureDate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateArticle(ctx, database, CreateArticleParams{
		ID:           "556",
		Category:     "Helm",
		LocationType: model.LocationStorage,
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAssignArticle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	person, err := CreatePerson(ctx, database, "Mia", "Muster")
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	article, err := CreateArticle(ctx, database, CreateArticleParams{
		ID: "700", Category: "Jacke", LocationType: model.LocationStorage,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	assigned, err := AssignArticle(ctx, database, article.ID, model.LocationPerson, &person.ID)
	if err != nil {
		t.Fatalf("AssignArticle: %v", err)
	}
	if assigned.Status != model.StatusIssued {
		t.Errorf("expected status %q, got %q", model.StatusIssued, assigned.Status)
	}
	if assigned.Location.Name != "Mia Muster" {
		t.Errorf("expected location 'Mia Muster', got %q", assigned.Location.Name)
	}

	movements, err := ListArticleMovements(ctx, database, article.ID, 10)
	if err != nil {
		t.Fatalf("ListArticleMovements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements after transfer, got %d", len(movements))
	}
	if movements[0].Action != model.ActionTransferToPerson {
		t.Errorf("expected transfer movement, got %q", movements[0].Action)
	}
}

func TestAssignArticleNoOp(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, err := CreateArticle(ctx, database, CreateArticleParams{
		ID: "701", Category: "Jacke", LocationType: model.LocationStorage,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	// Already in storage, so no ledger row is written.
	if _, err := AssignArticle(ctx, database, article.ID, model.LocationStorage, nil); err != nil {
		t.Fatalf("AssignArticle: %v", err)
	}

	movements, _ := ListArticleMovements(ctx, database, article.ID, 10)
	if len(movements) != 1 {
		t.Errorf("expected only the create movement, got %d", len(movements))
	}
}

func TestAssignArticleMissingPerson(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, _ := CreateArticle(ctx, database, CreateArticleParams{
		ID: "702", Category: "Jacke", LocationType: model.LocationStorage,
	})

	missing := int64(9999)
	_, err := AssignArticle(ctx, database, article.ID, model.LocationPerson, &missing)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}

	_, err = AssignArticle(ctx, database, article.ID, model.LocationPerson, nil)
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for missing person id, got %v", err)
	}
}

func TestUpdateArticle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, err := CreateArticle(ctx, database, CreateArticleParams{
		ID: "800", Category: "Jacke", Size: strptr("M"), LocationType: model.LocationStorage,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	updated, err := UpdateArticle(ctx, database, article.ID, ArticleChanges{
		Size:  strptr("L"),
		Label: strptr("Winterjacke"),
	}, nil)
	if err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}
	if updated.Size == nil || *updated.Size != "L" {
		t.Errorf("expected size 'L', got %v", updated.Size)
	}
	if updated.Label != "Winterjacke" {
		t.Errorf("expected label 'Winterjacke', got %q", updated.Label)
	}

	movements, _ := ListArticleMovements(ctx, database, article.ID, 10)
	if len(movements) != 2 {
		t.Fatalf("expected update movement, got %d movements", len(movements))
	}
	update := movements[0]
	if update.Action != model.ActionUpdate {
		t.Errorf("expected update action, got %q", update.Action)
	}
	if update.From == nil || update.To == nil || update.From.ID != update.To.ID {
		t.Error("expected update movement to stay at the current location")
	}
	if !strings.Contains(string(update.OldValue), `"size":"M"`) {
		t.Errorf("expected old size in diff, got %s", update.OldValue)
	}
	if !strings.Contains(string(update.NewValue), `"size":"L"`) {
		t.Errorf("expected new size in diff, got %s", update.NewValue)
	}
}

func TestUpdateArticleNoChanges(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, _ := CreateArticle(ctx, database, CreateArticleParams{
		ID: "801", Category: "Jacke", LocationType: model.LocationStorage,
	})

	// A note alone does not count as a field change.
	_, err := UpdateArticle(ctx, database, article.ID, ArticleChanges{}, strptr("just a note"))
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdateArticleNoteAppended(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, _ := CreateArticle(ctx, database, CreateArticleParams{
		ID: "802", Category: "Jacke", Notes: strptr("first note"), LocationType: model.LocationStorage,
	})

	updated, err := UpdateArticle(ctx, database, article.ID, ArticleChanges{
		Size: strptr("S"),
	}, strptr("second note"))
	if err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}
	if len(updated.NoteEntries) != 2 {
		t.Fatalf("expected 2 note entries, got %d", len(updated.NoteEntries))
	}
	// Newest note comes first.
	if updated.NoteEntries[0].Text != "second note" {
		t.Errorf("expected newest note first, got %q", updated.NoteEntries[0].Text)
	}
}

func TestUpdateArticleHelmetRule(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, _ := CreateArticle(ctx, database, CreateArticleParams{
		ID: "803", Category: "Helm", LocationType: model.LocationStorage,
		HelmetManufacturedAt: strptr("2020-01-01"),
	})

	// Changing the manufacture date moves the forced expiry with it.
	updated, err := UpdateArticle(ctx, database, article.ID, ArticleChanges{
		HelmetManufacturedAt: strptr("2022-06-15"),
	}, nil)
	if err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}
	if updated.ExpiryDate == nil || *updated.ExpiryDate != "2032-06-15" {
		t.Errorf("expected expiry 2032-06-15, got %v", updated.ExpiryDate)
	}

	// Recategorizing away from helmets lifts the forced-expiry rule.
	updated, err = UpdateArticle(ctx, database, article.ID, ArticleChanges{
		Category:   strptr("Jacke"),
		ExpiryDate: strptr("2040-01-01"),
	}, nil)
	if err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}
	if updated.ExpiryDate == nil || *updated.ExpiryDate != "2040-01-01" {
		t.Errorf("expected expiry 2040-01-01, got %v", updated.ExpiryDate)
	}
}

func TestCompleteHelmetCheck(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, _ := CreateArticle(ctx, database, CreateArticleParams{
		ID: "900", Category: "Helm", LocationType: model.LocationStorage,
		HelmetManufacturedAt: strptr("2024-01-01"),
	})

	checked, err := CompleteHelmetCheck(ctx, database, article.ID, strptr("2024-05-10"))
	if err != nil {
		t.Fatalf("CompleteHelmetCheck: %v", err)
	}
	if checked.HelmetLastCheck == nil || *checked.HelmetLastCheck != "2024-05-10" {
		t.Errorf("expected last check 2024-05-10, got %v", checked.HelmetLastCheck)
	}
	if checked.HelmetNextCheck == nil || *checked.HelmetNextCheck != "2026-05-10" {
		t.Errorf("expected next check 2026-05-10, got %v", checked.HelmetNextCheck)
	}

	movements, _ := ListArticleMovements(ctx, database, article.ID, 10)
	if movements[0].Action != model.ActionCertification {
		t.Errorf("expected certification movement, got %q", movements[0].Action)
	}
}

func TestCompleteHelmetCheckNonHelmet(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, _ := CreateArticle(ctx, database, CreateArticleParams{
		ID: "901", Category: "Jacke", LocationType: model.LocationStorage,
	})

	_, err := CompleteHelmetCheck(ctx, database, article.ID, nil)
	if !errors.Is(err, model.ErrCategoryMismatch) {
		t.Errorf("expected category mismatch error, got %v", err)
	}
}

func TestRetireArticle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, _ := CreateArticle(ctx, database, CreateArticleParams{
		ID: "950", Category: "Jacke", LocationType: model.LocationStorage,
	})

	if err := RetireArticle(ctx, database, article.ID); err != nil {
		t.Fatalf("RetireArticle: %v", err)
	}

	if _, err := GetArticle(ctx, database, article.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected retired article to be hidden, got %v", err)
	}

	articles, _ := ListArticles(ctx, database, false)
	if len(articles) != 0 {
		t.Errorf("expected retired article excluded from listing, got %d", len(articles))
	}

	// Retiring again behaves like a missing article.
	if err := RetireArticle(ctx, database, article.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found on double retire, got %v", err)
	}
}

func TestListArticlesAssignedOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	person, _ := CreatePerson(ctx, database, "Tom", "Tester")
	CreateArticle(ctx, database, CreateArticleParams{
		ID: "960", Category: "Jacke", LocationType: model.LocationStorage,
	})
	CreateArticle(ctx, database, CreateArticleParams{
		ID: "961", Category: "Hose", LocationType: model.LocationPerson, PersonID: &person.ID,
	})

	all, err := ListArticles(ctx, database, false)
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 articles, got %d", len(all))
	}

	assigned, err := ListArticles(ctx, database, true)
	if err != nil {
		t.Fatalf("ListArticles assignedOnly: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != "000000961" {
		t.Errorf("expected only the issued article, got %v", assigned)
	}
}

func TestGetArticleTimeline(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	article, err := CreateArticle(ctx, database, CreateArticleParams{
		ID: "970", Category: "Jacke", Notes: strptr("intake note"), LocationType: model.LocationStorage,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	if len(article.Timeline) < 2 {
		t.Fatalf("expected movement and note in timeline, got %d entries", len(article.Timeline))
	}
	if article.AssignedAt == nil {
		t.Error("expected assignedAt to be populated")
	}
}
