package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripUnfilled(t *testing.T) {
	body := "Dear Ada,\nYour booking is confirmed.\nReason: {{.reason}}\nThanks."
	got := stripUnfilled(body)
	assert.Equal(t, "Dear Ada,\nYour booking is confirmed.\nThanks.", got)

	// Fully rendered bodies pass through untouched.
	clean := "Dear Ada,\nAll good."
	assert.Equal(t, clean, stripUnfilled(clean))
}

func TestBuiltinTemplatesCoverNotifications(t *testing.T) {
	ids := []string{
		"booking_received", "booking_confirmed", "booking_cancelled",
		"booking_rejected", "booking_completed",
		"tour_booking_received", "tour_booking_confirmed",
		"tour_booking_cancelled", "tour_booking_rejected",
		"tour_booking_completed",
		"inquiry_received", "contact_received",
	}
	for _, id := range ids {
		tmpl, ok := builtinTemplates[id]
		assert.True(t, ok, "missing template %s", id)
		assert.NotEmpty(t, tmpl.Subject, "empty subject for %s", id)
		assert.NotEmpty(t, tmpl.Body, "empty body for %s", id)
	}
}
