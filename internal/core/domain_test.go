package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
	}{
		{"Comida", CategoryComida},
		{"Transporte", CategoryTransporte},
		{" Saúde ", CategorySaude},
		{"Outros", CategoryOutros},
		{"", CategoryOutros},
		{"Viagens", CategoryOutros},   // outside the closed set
		{"comida", CategoryOutros},    // case-sensitive on purpose
	}
	for _, tc := range cases {
		if got := ParseCategory(tc.in); got != tc.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range AllCategories() {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if Category("Viagens").Valid() {
		t.Error("category outside the fixed set should not be valid")
	}
}

func TestExpenseListValidate(t *testing.T) {
	due := NewDate(2026, 9, 15, time.UTC)

	cases := []struct {
		name    string
		list    ExpenseList
		wantErr error
	}{
		{"valid", ExpenseList{OwnerID: "u1", Name: "Mercado", DueDate: due}, nil},
		{"missing owner", ExpenseList{Name: "Mercado", DueDate: due}, ErrEmptyOwner},
		{"missing name", ExpenseList{OwnerID: "u1", DueDate: due}, ErrEmptyName},
		{"zero due date", ExpenseList{OwnerID: "u1", Name: "Mercado"}, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.list.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestItemValidate(t *testing.T) {
	cases := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{"valid", Item{Name: "Arroz", Value: Money{Cents: 2500}, Category: CategoryComida}, false},
		{"zero value allowed", Item{Name: "Brinde", Value: Money{}, Category: CategoryOutros}, false},
		{"negative value", Item{Name: "Arroz", Value: Money{Cents: -1}, Category: CategoryComida}, true},
		{"empty name", Item{Value: Money{Cents: 100}, Category: CategoryComida}, true},
		{"unknown category", Item{Name: "Arroz", Value: Money{Cents: 100}, Category: "Viagens"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.item.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreditValidate(t *testing.T) {
	date := NewDate(2026, 9, 1, time.UTC)

	valid := Credit{OwnerID: "u1", Name: "Salário", Value: Money{Cents: 500000}, Date: date}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid credit rejected: %v", err)
	}

	zero := valid
	zero.Value = Money{}
	if !errors.Is(zero.Validate(), ErrInvalidAmount) {
		t.Error("zero-value credit should be rejected")
	}

	negative := valid
	negative.Value = Money{Cents: -100}
	if !errors.Is(negative.Validate(), ErrInvalidAmount) {
		t.Error("negative credit should be rejected")
	}
}
