package calendar

import "github.com/mklatt/careport/internal/model"

// Palette is the ordered set of recipient color tokens. A recipient's color is
// keyed by its position in the recipient list, cycling when the list outgrows
// the palette. Reordering recipients therefore reassigns colors; that is the
// documented contract, not a defect.
var Palette = []string{
	"blue", "emerald", "violet", "amber", "rose", "cyan",
	"lime", "sky", "teal", "fuchsia", "indigo", "pink",
}

// ColorNeutral is used when a recipient cannot be resolved.
const ColorNeutral = "slate"

// Fixed tokens for task and medication events.
const (
	colorRed    = "red"
	colorOrange = "orange"
	colorPurple = "purple"
	colorGreen  = "green"
	colorYellow = "yellow"
	colorGray   = "gray"
)

// ColorForRecipient returns the palette token for the recipient with the given
// id, or ColorNeutral when the id is not in the list.
func ColorForRecipient(recipients []model.CareRecipient, id int64) string {
	for i, r := range recipients {
		if r.ID == id {
			return Palette[i%len(Palette)]
		}
	}
	return ColorNeutral
}

// RecipientName resolves a display name for the given recipient id, falling
// back to "Unknown" when the recipient is missing or deleted.
func RecipientName(recipients []model.CareRecipient, id int64) string {
	for _, r := range recipients {
		if r.ID == id {
			return r.DisplayName()
		}
	}
	return "Unknown"
}

func taskColor(priority string) string {
	switch priority {
	case model.PriorityUrgent:
		return colorRed
	case model.PriorityHigh:
		return colorOrange
	default:
		return colorPurple
	}
}

func medicationColor(status string) string {
	switch status {
	case model.DoseTaken:
		return colorGreen
	case model.DoseSkipped:
		return colorYellow
	default:
		return colorGray
	}
}
