package model

import (
	"encoding/json"
	"time"
)

// Movement is one immutable row of the article ledger. Rows are only ever
// inserted, in the same transaction as the article change they record.
type Movement struct {
	ID          int64           `json:"id"`
	ArticleID   string          `json:"-"`
	Action      string          `json:"action"`
	EventType   string          `json:"eventType"`
	PerformedAt time.Time       `json:"performedAt"`
	From        *Location       `json:"from"`
	To          *Location       `json:"to"`
	OldValue    json.RawMessage `json:"oldValue,omitempty"`
	NewValue    json.RawMessage `json:"newValue,omitempty"`
}

// Movement actions.
const (
	ActionCreate            = "create"
	ActionTransferToPerson  = "transfer-to-person"
	ActionTransferToStorage = "transfer-to-storage"
	ActionUpdate            = "update"
	ActionCertification     = "certification-update"
	ActionRetire            = "retire"
)

// Movement event types (the coarser secondary tag).
const (
	EventCreate        = "create"
	EventTransfer      = "transfer"
	EventUpdate        = "update"
	EventCertification = "certification-update"
	EventRetire        = "retire"
)
