package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"financas/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// SQLiteRepository is the store behind lists, items, credits and the user
// directory. Calendar dates are persisted as unix seconds of midnight in
// the repository's location.
type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
}

func NewSQLiteRepository(dbPath string, loc *time.Location) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if loc == nil {
		loc = time.UTC
	}

	return &SQLiteRepository{db: db, loc: loc}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection. Readiness probes use it.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// UpsertUser stores a user record from the identity collaborator so the
// sweep can resolve notification addresses later.
func (r *SQLiteRepository) UpsertUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email`,
		u.ID, u.Name, u.Email)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateList stores a new expense list and returns its assigned id.
func (r *SQLiteRepository) CreateList(ctx context.Context, l core.ExpenseList) (string, error) {
	id := newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lists (id, owner_id, name, due_date) VALUES (?, ?, ?, ?)`,
		id, l.OwnerID, l.Name, l.DueDate.Unix())
	if err != nil {
		return "", fmt.Errorf("create list: %w", err)
	}

	slog.InfoContext(ctx, "List saved",
		"id", id,
		"owner_id", l.OwnerID,
		"name", l.Name,
		"due_date", l.DueDate.Format("2006-01-02"))

	return id, nil
}

func (r *SQLiteRepository) GetList(ctx context.Context, id string) (core.ExpenseList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, due_date, created_at FROM lists WHERE id = ?`, id)
	l, err := r.scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseList{}, fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.ExpenseList{}, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (r *SQLiteRepository) ListsByOwner(ctx context.Context, ownerID string) ([]core.ExpenseList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, due_date, created_at FROM lists
		 WHERE owner_id = ? ORDER BY due_date, created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("lists by owner: %w", err)
	}
	defer rows.Close()
	return r.collectLists(rows)
}

// ListsDueBetween returns lists whose due date falls in the half-open
// range [start, end). The sweep queries tomorrow's bounds through it.
func (r *SQLiteRepository) ListsDueBetween(ctx context.Context, start, end time.Time) ([]core.ExpenseList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, due_date, created_at FROM lists
		 WHERE due_date >= ? AND due_date < ? ORDER BY due_date, created_at`,
		start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("lists due between: %w", err)
	}
	defer rows.Close()
	return r.collectLists(rows)
}

// ListsByOwnerDueBetween scopes an owner's lists to an inclusive due-date
// range, the shape the monthly summary needs.
func (r *SQLiteRepository) ListsByOwnerDueBetween(ctx context.Context, ownerID string, start, end time.Time) ([]core.ExpenseList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, due_date, created_at FROM lists
		 WHERE owner_id = ? AND due_date >= ? AND due_date <= ?
		 ORDER BY due_date, created_at`,
		ownerID, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("lists by owner due between: %w", err)
	}
	defer rows.Close()
	return r.collectLists(rows)
}

// DeleteListCascade removes a list and all of its items in a single
// transaction, so a failure exposes no partial state.
func (r *SQLiteRepository) DeleteListCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE list_id = ?`, id); err != nil {
		return fmt.Errorf("delete list items: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete list rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("list %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "List deleted with items", "id", id)
	return nil
}

// CreateItem stores a new item under its list.
func (r *SQLiteRepository) CreateItem(ctx context.Context, it core.Item) (string, error) {
	id := newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO items (id, list_id, name, value_cents, category) VALUES (?, ?, ?, ?, ?)`,
		id, it.ListID, it.Name, it.Value.Cents, string(it.Category))
	if err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}

	slog.InfoContext(ctx, "Item saved",
		"id", id,
		"list_id", it.ListID,
		"name", it.Name,
		"value_cents", it.Value.Cents,
		"category", string(it.Category))

	return id, nil
}

func (r *SQLiteRepository) ItemsByList(ctx context.Context, listID string) ([]core.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, list_id, name, value_cents, category, created_at FROM items
		 WHERE list_id = ? ORDER BY created_at, id`, listID)
	if err != nil {
		return nil, fmt.Errorf("items by list: %w", err)
	}
	defer rows.Close()

	var items []core.Item
	for rows.Next() {
		var it core.Item
		var category string
		if err := rows.Scan(&it.ID, &it.ListID, &it.Name, &it.Value.Cents, &category, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		// Stored categories predating the closed set land in Outros.
		it.Category = core.ParseCategory(category)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, listID, itemID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND list_id = ?`, itemID, listID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %s in list %s: %w", itemID, listID, ErrNotFound)
	}
	return nil
}

// CreateCredit stores a standalone income entry.
func (r *SQLiteRepository) CreateCredit(ctx context.Context, c core.Credit) (string, error) {
	id := newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credits (id, owner_id, name, value_cents, date) VALUES (?, ?, ?, ?, ?)`,
		id, c.OwnerID, c.Name, c.Value.Cents, c.Date.Unix())
	if err != nil {
		return "", fmt.Errorf("create credit: %w", err)
	}

	slog.InfoContext(ctx, "Credit saved",
		"id", id,
		"owner_id", c.OwnerID,
		"name", c.Name,
		"value_cents", c.Value.Cents)

	return id, nil
}

func (r *SQLiteRepository) CreditsByOwner(ctx context.Context, ownerID string) ([]core.Credit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, value_cents, date, created_at FROM credits
		 WHERE owner_id = ? ORDER BY date, created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("credits by owner: %w", err)
	}
	defer rows.Close()
	return r.collectCredits(rows)
}

// CreditsByOwnerBetween scopes an owner's credits to an inclusive date
// range for the monthly summary.
func (r *SQLiteRepository) CreditsByOwnerBetween(ctx context.Context, ownerID string, start, end time.Time) ([]core.Credit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, value_cents, date, created_at FROM credits
		 WHERE owner_id = ? AND date >= ? AND date <= ?
		 ORDER BY date, created_at`,
		ownerID, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("credits by owner between: %w", err)
	}
	defer rows.Close()
	return r.collectCredits(rows)
}

func (r *SQLiteRepository) DeleteCredit(ctx context.Context, ownerID, creditID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM credits WHERE id = ? AND owner_id = ?`, creditID, ownerID)
	if err != nil {
		return fmt.Errorf("delete credit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credit rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("credit %s: %w", creditID, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanList(row rowScanner) (core.ExpenseList, error) {
	var l core.ExpenseList
	var due int64
	if err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &due, &l.CreatedAt); err != nil {
		return core.ExpenseList{}, err
	}
	l.DueDate = core.DayOf(time.Unix(due, 0), r.loc)
	return l, nil
}

func (r *SQLiteRepository) collectLists(rows *sql.Rows) ([]core.ExpenseList, error) {
	var lists []core.ExpenseList
	for rows.Next() {
		l, err := r.scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	return lists, nil
}

func (r *SQLiteRepository) collectCredits(rows *sql.Rows) ([]core.Credit, error) {
	var credits []core.Credit
	for rows.Next() {
		var c core.Credit
		var date int64
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Value.Cents, &date, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		c.Date = core.DayOf(time.Unix(date, 0), r.loc)
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credits: %w", err)
	}
	return credits, nil
}

// newID generates an opaque record identifier.
func newID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("id_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
