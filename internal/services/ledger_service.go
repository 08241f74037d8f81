package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

// ChangePublisher announces ledger writes to interested consumers (the
// live summary watcher). amqp.Client satisfies it.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, kind, ownerID, entityID string) error
}

// LedgerService orchestrates list/item/credit writes: validate, persist,
// then publish a change event. Publishing is best-effort; the store is the
// source of truth and a broker outage never fails the user's write.
type LedgerService struct {
	storage *storage.SQLiteRepository
	events  ChangePublisher
}

func NewLedgerService(storage *storage.SQLiteRepository, events ChangePublisher) *LedgerService {
	return &LedgerService{
		storage: storage,
		events:  events,
	}
}

// RegisterUser records a user from the identity collaborator so reminder
// addresses can be resolved later.
func (s *LedgerService) RegisterUser(ctx context.Context, u core.User) error {
	if u.ID == "" {
		return core.ErrEmptyOwner
	}
	if err := s.storage.UpsertUser(ctx, u); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

// CreateList stores a new expense list and returns its id.
func (s *LedgerService) CreateList(ctx context.Context, l core.ExpenseList) (string, error) {
	if err := l.Validate(); err != nil {
		return "", fmt.Errorf("validate list: %w", err)
	}

	id, err := s.storage.CreateList(ctx, l)
	if err != nil {
		return "", fmt.Errorf("save list: %w", err)
	}

	s.publish(ctx, amqp.ChangeListCreated, l.OwnerID, id)
	return id, nil
}

// DeleteList removes an owner's list together with all of its items. The
// cascade is all-or-nothing; a failure leaves prior state unchanged.
func (s *LedgerService) DeleteList(ctx context.Context, ownerID, listID string) error {
	list, err := s.storage.GetList(ctx, listID)
	if err != nil {
		return fmt.Errorf("load list: %w", err)
	}
	if list.OwnerID != ownerID {
		return fmt.Errorf("list %s: %w", listID, storage.ErrNotFound)
	}

	if err := s.storage.DeleteListCascade(ctx, listID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	s.publish(ctx, amqp.ChangeListDeleted, ownerID, listID)
	return nil
}

// AddItem stores an item under a list. Categories outside the closed set
// are coerced to Outros rather than rejected.
func (s *LedgerService) AddItem(ctx context.Context, ownerID string, it core.Item) (string, error) {
	list, err := s.storage.GetList(ctx, it.ListID)
	if err != nil {
		return "", fmt.Errorf("load list: %w", err)
	}
	if list.OwnerID != ownerID {
		return "", fmt.Errorf("list %s: %w", it.ListID, storage.ErrNotFound)
	}

	it.Category = core.ParseCategory(string(it.Category))
	if err := it.Validate(); err != nil {
		return "", fmt.Errorf("validate item: %w", err)
	}

	id, err := s.storage.CreateItem(ctx, it)
	if err != nil {
		return "", fmt.Errorf("save item: %w", err)
	}

	s.publish(ctx, amqp.ChangeItemCreated, ownerID, id)
	return id, nil
}

// DeleteItem removes a single item from an owner's list.
func (s *LedgerService) DeleteItem(ctx context.Context, ownerID, listID, itemID string) error {
	list, err := s.storage.GetList(ctx, listID)
	if err != nil {
		return fmt.Errorf("load list: %w", err)
	}
	if list.OwnerID != ownerID {
		return fmt.Errorf("list %s: %w", listID, storage.ErrNotFound)
	}

	if err := s.storage.DeleteItem(ctx, listID, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.publish(ctx, amqp.ChangeItemDeleted, ownerID, itemID)
	return nil
}

// CreateCredit stores a standalone income entry.
func (s *LedgerService) CreateCredit(ctx context.Context, c core.Credit) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("validate credit: %w", err)
	}

	id, err := s.storage.CreateCredit(ctx, c)
	if err != nil {
		return "", fmt.Errorf("save credit: %w", err)
	}

	s.publish(ctx, amqp.ChangeCreditCreated, c.OwnerID, id)
	return id, nil
}

// DeleteCredit removes an owner's credit entry.
func (s *LedgerService) DeleteCredit(ctx context.Context, ownerID, creditID string) error {
	if err := s.storage.DeleteCredit(ctx, ownerID, creditID); err != nil {
		return fmt.Errorf("delete credit: %w", err)
	}

	s.publish(ctx, amqp.ChangeCreditDeleted, ownerID, creditID)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, kind, ownerID, entityID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerChange(ctx, kind, ownerID, entityID); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger change",
			"kind", kind,
			"owner_id", ownerID,
			"entity_id", entityID,
			"error", err)
	}
}

// Close releases the underlying store.
func (s *LedgerService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close ledger service: %w", err)
		}
	}
	return nil
}
