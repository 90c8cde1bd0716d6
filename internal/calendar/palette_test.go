package calendar

import (
	"testing"

	"github.com/mklatt/careport/internal/model"
)

func testRecipients(n int) []model.CareRecipient {
	out := make([]model.CareRecipient, n)
	for i := range out {
		out[i] = model.CareRecipient{ID: int64(i + 1), FirstName: "R", LastName: string(rune('A' + i))}
	}
	return out
}

func TestColorForRecipientDeterministic(t *testing.T) {
	recipients := testRecipients(3)

	first := ColorForRecipient(recipients, 2)
	for i := 0; i < 10; i++ {
		if got := ColorForRecipient(recipients, 2); got != first {
			t.Fatalf("call %d returned %q, first call returned %q", i, got, first)
		}
	}
	if first != Palette[1] {
		t.Errorf("color = %q, want %q (index 1)", first, Palette[1])
	}
}

func TestColorForRecipientCycles(t *testing.T) {
	recipients := testRecipients(len(Palette) + 2)

	got := ColorForRecipient(recipients, int64(len(Palette)+1))
	if got != Palette[0] {
		t.Errorf("color past palette end = %q, want %q", got, Palette[0])
	}
}

func TestColorForRecipientMissing(t *testing.T) {
	if got := ColorForRecipient(testRecipients(2), 99); got != ColorNeutral {
		t.Errorf("missing recipient color = %q, want %q", got, ColorNeutral)
	}
	if got := ColorForRecipient(nil, 1); got != ColorNeutral {
		t.Errorf("empty list color = %q, want %q", got, ColorNeutral)
	}
}

func TestColorForRecipientIsPositional(t *testing.T) {
	recipients := testRecipients(2)
	before := ColorForRecipient(recipients, 2)

	reordered := []model.CareRecipient{recipients[1], recipients[0]}
	after := ColorForRecipient(reordered, 2)

	if before == after {
		t.Errorf("reordering should reassign colors, got %q both times", before)
	}
	if after != Palette[0] {
		t.Errorf("reordered color = %q, want %q", after, Palette[0])
	}
}

func TestRecipientName(t *testing.T) {
	recipients := []model.CareRecipient{{ID: 1, FirstName: "Edith", LastName: "Marsh"}}

	if got := RecipientName(recipients, 1); got != "Edith Marsh" {
		t.Errorf("name = %q, want %q", got, "Edith Marsh")
	}
	if got := RecipientName(recipients, 7); got != "Unknown" {
		t.Errorf("missing recipient name = %q, want %q", got, "Unknown")
	}
}
