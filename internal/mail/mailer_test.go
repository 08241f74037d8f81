package mail

import (
	"strings"
	"testing"
	"time"

	"financas/internal/core"
)

func TestReminderSubject(t *testing.T) {
	got := ReminderSubject("Mercado")
	if !strings.Contains(got, `"Mercado"`) {
		t.Errorf("subject %q does not name the list", got)
	}
	if !strings.Contains(got, "vence em breve") {
		t.Errorf("subject %q missing due-soon phrasing", got)
	}
}

func TestReminderBody(t *testing.T) {
	due := core.NewDate(2026, 8, 29, time.UTC)
	got := ReminderBody("Mercado", due)

	if !strings.Contains(got, "<strong>Mercado</strong>") {
		t.Errorf("body %q does not highlight the list name", got)
	}
	if !strings.Contains(got, "29/08/2026") {
		t.Errorf("body %q does not show the due date in pt-BR format", got)
	}
}
