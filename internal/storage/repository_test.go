package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"financas/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "financas.db"), time.UTC)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, id, email string) {
	t.Helper()
	if err := repo.UpsertUser(context.Background(), core.User{ID: id, Name: "Ana", Email: email}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestUserUpsertAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "u1", "ana@example.com")

	u, err := repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Errorf("email = %q, want ana@example.com", u.Email)
	}

	// Upsert updates in place.
	if err := repo.UpsertUser(ctx, core.User{ID: "u1", Name: "Ana", Email: "nova@example.com"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	u, err = repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser after upsert: %v", err)
	}
	if u.Email != "nova@example.com" {
		t.Errorf("email after upsert = %q, want nova@example.com", u.Email)
	}

	if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestListRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "ana@example.com")

	due := core.NewDate(2026, 8, 29, time.UTC)
	id, err := repo.CreateList(ctx, core.ExpenseList{OwnerID: "u1", Name: "Mercado", DueDate: due})
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if id == "" {
		t.Fatal("CreateList returned empty id")
	}

	got, err := repo.GetList(ctx, id)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if got.Name != "Mercado" || got.OwnerID != "u1" {
		t.Errorf("got %+v", got)
	}
	if !got.DueDate.Equal(due.Time) {
		t.Errorf("due date = %v, want %v", got.DueDate, due)
	}

	lists, err := repo.ListsByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListsByOwner: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("owner has %d lists, want 1", len(lists))
	}
}

func TestListsDueBetweenHalfOpen(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "ana@example.com")

	for _, day := range []int{28, 29, 30} {
		due := core.NewDate(2026, 8, day, time.UTC)
		if _, err := repo.CreateList(ctx, core.ExpenseList{OwnerID: "u1", Name: "L", DueDate: due}); err != nil {
			t.Fatalf("CreateList day %d: %v", day, err)
		}
	}

	start := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	due, err := repo.ListsDueBetween(ctx, start, end)
	if err != nil {
		t.Fatalf("ListsDueBetween: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("got %d lists, want exactly the one due on the 29th", len(due))
	}
	if due[0].DueDate.Day() != 29 {
		t.Errorf("due on day %d, want 29", due[0].DueDate.Day())
	}
}

func TestDeleteListCascade(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "ana@example.com")

	due := core.NewDate(2026, 8, 29, time.UTC)
	listID, err := repo.CreateList(ctx, core.ExpenseList{OwnerID: "u1", Name: "Mercado", DueDate: due})
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	for i := 0; i < 3; i++ {
		it := core.Item{ListID: listID, Name: "Item", Value: core.Money{Cents: 100}, Category: core.CategoryComida}
		if _, err := repo.CreateItem(ctx, it); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	if err := repo.DeleteListCascade(ctx, listID); err != nil {
		t.Fatalf("DeleteListCascade: %v", err)
	}

	if _, err := repo.GetList(ctx, listID); !errors.Is(err, ErrNotFound) {
		t.Errorf("list should be gone, got %v", err)
	}
	items, err := repo.ItemsByList(ctx, listID)
	if err != nil {
		t.Fatalf("ItemsByList: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("%d orphaned items left behind", len(items))
	}

	if err := repo.DeleteListCascade(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting a missing list: got %v, want ErrNotFound", err)
	}
}

func TestItemCategoryCoercionOnRead(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "ana@example.com")

	due := core.NewDate(2026, 8, 29, time.UTC)
	listID, err := repo.CreateList(ctx, core.ExpenseList{OwnerID: "u1", Name: "Mercado", DueDate: due})
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}

	// Simulate a legacy row with a category outside the closed set.
	if _, err := repo.db.ExecContext(ctx,
		`INSERT INTO items (id, list_id, name, value_cents, category) VALUES ('legacy', ?, 'Antigo', 500, 'Viagens')`,
		listID); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	items, err := repo.ItemsByList(ctx, listID)
	if err != nil {
		t.Fatalf("ItemsByList: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Category != core.CategoryOutros {
		t.Errorf("legacy category = %q, want Outros", items[0].Category)
	}
}

func TestCreditRangeQuery(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "ana@example.com")

	for _, d := range []core.Date{
		core.NewDate(2026, 7, 31, time.UTC),
		core.NewDate(2026, 8, 1, time.UTC),
		core.NewDate(2026, 8, 31, time.UTC),
		core.NewDate(2026, 9, 1, time.UTC),
	} {
		c := core.Credit{OwnerID: "u1", Name: "Crédito", Value: core.Money{Cents: 1000}, Date: d}
		if _, err := repo.CreateCredit(ctx, c); err != nil {
			t.Fatalf("CreateCredit: %v", err)
		}
	}

	start, end := (core.MonthWindow{Year: 2026, Month: 8}).Bounds(time.UTC)
	credits, err := repo.CreditsByOwnerBetween(ctx, "u1", start, end)
	if err != nil {
		t.Fatalf("CreditsByOwnerBetween: %v", err)
	}
	if len(credits) != 2 {
		t.Fatalf("got %d credits in August, want 2", len(credits))
	}
}

func TestDeleteCreditScopedToOwner(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "ana@example.com")
	seedUser(t, repo, "u2", "bia@example.com")

	id, err := repo.CreateCredit(ctx, core.Credit{
		OwnerID: "u1", Name: "Salário", Value: core.Money{Cents: 1000},
		Date: core.NewDate(2026, 8, 1, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateCredit: %v", err)
	}

	if err := repo.DeleteCredit(ctx, "u2", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner delete: got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteCredit(ctx, "u1", id); err != nil {
		t.Errorf("owner delete: %v", err)
	}
}
