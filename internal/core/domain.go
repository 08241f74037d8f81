package core

import (
	"errors"
	"strings"
	"time"
)

// Categories form a closed set. Anything outside it is coerced to
// CategoryOutros at construction time, never rejected.
const (
	CategoryComida        Category = "Comida"
	CategoryTransporte    Category = "Transporte"
	CategoryEducacao      Category = "Educação"
	CategorySaude         Category = "Saúde"
	CategoryLazer         Category = "Lazer"
	CategoryMoradia       Category = "Moradia"
	CategoryContas        Category = "Contas"
	CategoryInvestimentos Category = "Investimentos"
	CategoryCompras       Category = "Compras"
	CategoryOutros        Category = "Outros"
)

type (
	Category string

	// Date is a calendar day. The time-of-day portion is always midnight
	// in the location it was constructed with.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// ExpenseList groups items under a single due date. Lists are never
	// mutated after creation; only their items change.
	ExpenseList struct {
		ID        string
		OwnerID   string
		Name      string
		DueDate   Date
		CreatedAt time.Time
	}

	Item struct {
		ID        string
		ListID    string
		Name      string
		Value     Money
		Category  Category
		CreatedAt time.Time
	}

	// Credit is a standalone income entry, independent of any list.
	Credit struct {
		ID        string
		OwnerID   string
		Name      string
		Value     Money
		Date      Date
		CreatedAt time.Time
	}

	User struct {
		ID        string
		Name      string
		Email     string
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyOwner    = errors.New("empty owner")
)

// AllCategories returns the closed category set in its canonical order.
func AllCategories() []Category {
	return []Category{
		CategoryComida,
		CategoryTransporte,
		CategoryEducacao,
		CategorySaude,
		CategoryLazer,
		CategoryMoradia,
		CategoryContas,
		CategoryInvestimentos,
		CategoryCompras,
		CategoryOutros,
	}
}

// ParseCategory maps a raw string onto the closed set. Unknown or empty
// input falls back to CategoryOutros.
func ParseCategory(raw string) Category {
	c := Category(strings.TrimSpace(raw))
	for _, known := range AllCategories() {
		if c == known {
			return known
		}
	}
	return CategoryOutros
}

// Valid reports whether the category is one of the closed set.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// NewDate creates a calendar day in the given location.
func NewDate(year, month, day int, loc *time.Location) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)}
}

// DayOf truncates a timestamp to its calendar day in the given location.
func DayOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return NewDate(y, int(m), d, loc)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (l ExpenseList) Validate() error {
	if strings.TrimSpace(l.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	if len(l.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return l.DueDate.Validate()
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if len(i.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if i.Value.Cents < 0 {
		return ErrInvalidAmount
	}
	if !i.Category.Valid() {
		return errors.New("category outside the fixed set")
	}
	return nil
}

func (c Credit) Validate() error {
	if strings.TrimSpace(c.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if c.Value.Cents <= 0 {
		return ErrInvalidAmount
	}
	return c.Date.Validate()
}
