package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change kinds published on every ledger write. Consumers treat them all
// the same way: reload and recompute, never patch incrementally.
const (
	ChangeListCreated   = "list_created"
	ChangeListDeleted   = "list_deleted"
	ChangeItemCreated   = "item_created"
	ChangeItemDeleted   = "item_deleted"
	ChangeCreditCreated = "credit_created"
	ChangeCreditDeleted = "credit_deleted"
)

// LedgerChangeMessage announces that an owner's records changed. It carries
// identifiers only; consumers fetch current state from the store.
type LedgerChangeMessage struct {
	Kind      string    `json:"kind"`
	OwnerID   string    `json:"owner_id"`
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangeMessage(kind, ownerID, entityID string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Kind:      kind,
		OwnerID:   ownerID,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangeMessage) Validate() error {
	switch m.Kind {
	case ChangeListCreated, ChangeListDeleted,
		ChangeItemCreated, ChangeItemDeleted,
		ChangeCreditCreated, ChangeCreditDeleted:
	default:
		return fmt.Errorf("unknown change kind: %q", m.Kind)
	}
	if m.OwnerID == "" {
		return fmt.Errorf("change message without owner id")
	}
	return nil
}

func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
