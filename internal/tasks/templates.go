package tasks

import (
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/notify"
)

// emailTemplate is a built-in notification template. Placeholders use the
// {{.key}} form and are substituted from the task payload data.
type emailTemplate struct {
	Subject string
	Body    string
}

// builtinTemplates maps template IDs to their subject and plain-text body.
var builtinTemplates = map[string]emailTemplate{
	notify.TemplateBookingReceived: {
		Subject: "Booking received - {{.property}}",
		Body: "Hello {{.name}},\n\nWe have received your booking for {{.property}} " +
			"({{.check_in}} to {{.check_out}}, {{.nights}} night(s), total {{.total}}).\n" +
			"Our team will review it shortly.\n",
	},
	notify.TemplateBookingConfirmed: {
		Subject: "Booking confirmed - {{.property}}",
		Body:    "Hello {{.name}},\n\nYour booking for {{.property}} has been confirmed.\n",
	},
	notify.TemplateBookingCancelled: {
		Subject: "Booking cancelled - {{.property}}",
		Body:    "Hello {{.name}},\n\nYour booking for {{.property}} has been cancelled.\n{{.reason}}\n",
	},
	notify.TemplateBookingRejected: {
		Subject: "Booking rejected - {{.property}}",
		Body:    "Hello {{.name}},\n\nUnfortunately your booking for {{.property}} could not be accepted.\n",
	},
	notify.TemplateBookingCompleted: {
		Subject: "Booking completed - {{.property}}",
		Body:    "Hello {{.name}},\n\nYour stay at {{.property}} is complete. Thank you for booking with us.\n",
	},
	notify.TemplateTourBookingReceived: {
		Subject: "Tour booking received - {{.tour}}",
		Body: "Hello {{.name}},\n\nWe have received your tour booking for {{.tour}} on {{.date}} " +
			"({{.guests}} guest(s), total {{.total}}).\n",
	},
	notify.TemplateTourBookingConfirmed: {
		Subject: "Tour booking confirmed - {{.tour}}",
		Body:    "Hello {{.name}},\n\nYour tour booking for {{.tour}} on {{.date}} has been confirmed.\n",
	},
	notify.TemplateTourBookingCancelled: {
		Subject: "Tour booking cancelled - {{.tour}}",
		Body:    "Hello {{.name}},\n\nYour tour booking for {{.tour}} has been cancelled.\n{{.reason}}\n",
	},
	notify.TemplateTourBookingRejected: {
		Subject: "Tour booking rejected - {{.tour}}",
		Body:    "Hello {{.name}},\n\nUnfortunately your tour booking for {{.tour}} could not be accepted.\n",
	},
	notify.TemplateTourBookingCompleted: {
		Subject: "Tour booking completed - {{.tour}}",
		Body:    "Hello {{.name}},\n\nWe hope you enjoyed {{.tour}}. Thank you for booking with us.\n",
	},
	notify.TemplateInquiryReceived: {
		Subject: "Inquiry received - {{.property}}",
		Body:    "Hello {{.name}},\n\nThank you for your inquiry about {{.property}}. An agent will contact you soon.\n",
	},
	notify.TemplateContactReceived: {
		Subject: "We received your message - contact form",
		Body:    "Hello {{.name}},\n\nThank you for reaching out. We will get back to you shortly.\n",
	},
}
