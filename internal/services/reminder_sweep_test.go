package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"financas/internal/core"
)

type fakeListSource struct {
	lists []core.ExpenseList
	err   error
}

func (f *fakeListSource) ListsDueBetween(_ context.Context, start, end time.Time) ([]core.ExpenseList, error) {
	if f.err != nil {
		return nil, f.err
	}
	var due []core.ExpenseList
	for _, l := range f.lists {
		if !l.DueDate.Before(start) && l.DueDate.Before(end) {
			due = append(due, l)
		}
	}
	return due, nil
}

type fakeDirectory struct {
	users map[string]core.User
}

func (f *fakeDirectory) GetUser(_ context.Context, id string) (core.User, error) {
	u, ok := f.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user %s not found", id)
	}
	return u, nil
}

type sentMail struct {
	to      string
	subject string
	html    string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]bool
}

func (f *fakeMailer) Send(_ context.Context, from, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[to] {
		return errors.New("smtp rejected")
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

func sweepFixture(lists *fakeListSource, users *fakeDirectory, mailer *fakeMailer) *ReminderSweep {
	return NewReminderSweep(lists, users, mailer, "Financas <onboarding@resend.dev>", time.UTC, 4)
}

func TestSweepDispatchesOnlyTomorrow(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	tomorrow := core.NewDate(2026, 8, 29, time.UTC)
	inFiveDays := core.NewDate(2026, 9, 2, time.UTC)

	lists := &fakeListSource{lists: []core.ExpenseList{
		{ID: "L1", OwnerID: "U1", Name: "Mercado", DueDate: tomorrow},
		{ID: "L2", OwnerID: "U2", Name: "Farmácia", DueDate: inFiveDays},
	}}
	users := &fakeDirectory{users: map[string]core.User{
		"U1": {ID: "U1", Name: "Ana", Email: "ana@example.com"},
		"U2": {ID: "U2", Name: "Bia", Email: "bia@example.com"},
	}}
	mailer := &fakeMailer{}

	report, err := sweepFixture(lists, users, mailer).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Matched != 1 || report.Dispatched != 1 {
		t.Errorf("report = %+v, want 1 matched and 1 dispatched", report)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.sent))
	}
	if mailer.sent[0].to != "ana@example.com" {
		t.Errorf("dispatched to %s, want ana@example.com", mailer.sent[0].to)
	}
}

func TestSweepSkipsOwnerWithoutEmail(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	tomorrow := core.NewDate(2026, 8, 29, time.UTC)

	lists := &fakeListSource{lists: []core.ExpenseList{
		{ID: "L1", OwnerID: "U1", Name: "Mercado", DueDate: tomorrow},
	}}
	users := &fakeDirectory{users: map[string]core.User{
		"U1": {ID: "U1", Name: "Ana"}, // no email
	}}
	mailer := &fakeMailer{}

	report, err := sweepFixture(lists, users, mailer).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run should not fail: %v", err)
	}

	if report.Skipped != 1 || report.Dispatched != 0 {
		t.Errorf("report = %+v, want 1 skipped and 0 dispatched", report)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("sent %d mails, want 0", len(mailer.sent))
	}
}

func TestSweepNoQualifyingLists(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	lists := &fakeListSource{}
	users := &fakeDirectory{}
	mailer := &fakeMailer{}

	report, err := sweepFixture(lists, users, mailer).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("empty sweep is a no-op, not an error: %v", err)
	}
	if report != (SweepReport{}) {
		t.Errorf("report = %+v, want all zero", report)
	}
}

func TestSweepIsolatesDispatchFailures(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	tomorrow := core.NewDate(2026, 8, 29, time.UTC)

	lists := &fakeListSource{lists: []core.ExpenseList{
		{ID: "L1", OwnerID: "U1", Name: "Mercado", DueDate: tomorrow},
		{ID: "L2", OwnerID: "U2", Name: "Farmácia", DueDate: tomorrow},
		{ID: "L3", OwnerID: "U3", Name: "Contas", DueDate: tomorrow},
	}}
	users := &fakeDirectory{users: map[string]core.User{
		"U1": {ID: "U1", Email: "ana@example.com"},
		"U2": {ID: "U2", Email: "bia@example.com"},
		"U3": {ID: "U3", Email: "caio@example.com"},
	}}
	mailer := &fakeMailer{failTo: map[string]bool{"bia@example.com": true}}

	report, err := sweepFixture(lists, users, mailer).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("per-list failures must not fail the run: %v", err)
	}

	if report.Dispatched != 2 || report.Failed != 1 {
		t.Errorf("report = %+v, want 2 dispatched and 1 failed", report)
	}
}

func TestSweepUnknownOwnerDoesNotAbort(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	tomorrow := core.NewDate(2026, 8, 29, time.UTC)

	lists := &fakeListSource{lists: []core.ExpenseList{
		{ID: "L1", OwnerID: "ghost", Name: "Mercado", DueDate: tomorrow},
		{ID: "L2", OwnerID: "U1", Name: "Farmácia", DueDate: tomorrow},
	}}
	users := &fakeDirectory{users: map[string]core.User{
		"U1": {ID: "U1", Email: "ana@example.com"},
	}}
	mailer := &fakeMailer{}

	report, err := sweepFixture(lists, users, mailer).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 1 || report.Dispatched != 1 {
		t.Errorf("report = %+v, want 1 failed and 1 dispatched", report)
	}
}

func TestSweepQueryFailureFailsRun(t *testing.T) {
	lists := &fakeListSource{err: errors.New("store unavailable")}

	_, err := sweepFixture(lists, &fakeDirectory{}, &fakeMailer{}).Run(context.Background(), time.Now())
	if err == nil {
		t.Fatal("a failing qualifying-list query must fail the run")
	}
}

func TestSweepReminderContent(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	tomorrow := core.NewDate(2026, 8, 29, time.UTC)

	lists := &fakeListSource{lists: []core.ExpenseList{
		{ID: "L1", OwnerID: "U1", Name: "Mercado", DueDate: tomorrow},
	}}
	users := &fakeDirectory{users: map[string]core.User{
		"U1": {ID: "U1", Email: "ana@example.com"},
	}}
	mailer := &fakeMailer{}

	if _, err := sweepFixture(lists, users, mailer).Run(context.Background(), now); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.sent))
	}
	m := mailer.sent[0]
	if want := `Lembrete: lista "Mercado" vence em breve`; m.subject != want {
		t.Errorf("subject = %q, want %q", m.subject, want)
	}
	if want := "29/08/2026"; !strings.Contains(m.html, want) {
		t.Errorf("body %q missing due date %q", m.html, want)
	}
}
