package model

import (
	"testing"
	"time"
)

func dateIn(days int) *string {
	d := time.Now().UTC().AddDate(0, 0, days).Format(DateLayout)
	return &d
}

func TestDeriveStatusBase(t *testing.T) {
	now := time.Now().UTC()

	storage := &Article{Category: "Jacke", Location: &Location{Type: LocationStorage}}
	if status, warning := DeriveStatus(storage, now); status != StatusInStorage || warning != nil {
		t.Errorf("storage article: got %q/%v, want %q/nil", status, warning, StatusInStorage)
	}

	personID := int64(1)
	issued := &Article{Category: "Jacke", Location: &Location{Type: LocationPerson, PersonID: &personID}}
	if status, warning := DeriveStatus(issued, now); status != StatusIssued || warning != nil {
		t.Errorf("issued article: got %q/%v, want %q/nil", status, warning, StatusIssued)
	}
}

func TestDeriveStatusHelmetCheckDue(t *testing.T) {
	now := time.Now().UTC()
	helmet := &Article{
		Category:        "Helm",
		Location:        &Location{Type: LocationStorage},
		HelmetNextCheck: dateIn(10),
	}

	status, warning := DeriveStatus(helmet, now)
	if status != StatusWarning {
		t.Fatalf("expected status %q, got %q", StatusWarning, status)
	}
	if warning == nil || warning.Kind != WarningCheckDue {
		t.Fatalf("expected check-due warning, got %+v", warning)
	}
	if warning.Date != *helmet.HelmetNextCheck {
		t.Errorf("warning date = %q, want %q", warning.Date, *helmet.HelmetNextCheck)
	}
	if warning.WindowDays != WarningWindowDays {
		t.Errorf("windowDays = %d, want %d", warning.WindowDays, WarningWindowDays)
	}
}

func TestDeriveStatusExpiryOverridesCheck(t *testing.T) {
	now := time.Now().UTC()
	helmet := &Article{
		Category:        "Helm",
		Location:        &Location{Type: LocationStorage},
		HelmetNextCheck: dateIn(10),
		ExpiryDate:      dateIn(5),
	}

	status, warning := DeriveStatus(helmet, now)
	if status != StatusWarning {
		t.Fatalf("expected status %q, got %q", StatusWarning, status)
	}
	if warning == nil || warning.Kind != WarningExpiryDue {
		t.Fatalf("expected expiry warning to override check warning, got %+v", warning)
	}
}

func TestDeriveStatusOutsideWindow(t *testing.T) {
	now := time.Now().UTC()
	helmet := &Article{
		Category:        "Helm",
		Location:        &Location{Type: LocationStorage},
		HelmetNextCheck: dateIn(60),
		ExpiryDate:      dateIn(400),
	}

	status, warning := DeriveStatus(helmet, now)
	if status != StatusInStorage || warning != nil {
		t.Errorf("dates outside window: got %q/%v, want %q/nil", status, warning, StatusInStorage)
	}
}

func TestDeriveStatusNonHelmetNeverWarns(t *testing.T) {
	now := time.Now().UTC()
	jacket := &Article{
		Category:        "Jacke",
		Location:        &Location{Type: LocationStorage},
		HelmetNextCheck: dateIn(1),
		ExpiryDate:      dateIn(1),
	}

	status, warning := DeriveStatus(jacket, now)
	if status != StatusInStorage || warning != nil {
		t.Errorf("non-helmet with due dates: got %q/%v, want %q/nil", status, warning, StatusInStorage)
	}
}

func TestDeriveStatusOverdueDates(t *testing.T) {
	now := time.Now().UTC()
	helmet := &Article{
		Category:        "Helm",
		Location:        &Location{Type: LocationStorage},
		HelmetNextCheck: dateIn(-30),
	}

	status, warning := DeriveStatus(helmet, now)
	if status != StatusWarning || warning == nil || warning.Kind != WarningCheckDue {
		t.Errorf("overdue check: got %q/%+v, want warning-active/check-due", status, warning)
	}
}
