// Package notify decouples the engines from email delivery. Services call
// Dispatch after persistence; the production implementation enqueues an
// asynq task so the transactional result never depends on delivery.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

// Template identifiers for lifecycle notifications. The task processor maps
// these to built-in subject/body templates.
const (
	TemplateBookingReceived      = "booking_received"
	TemplateBookingConfirmed     = "booking_confirmed"
	TemplateBookingCancelled     = "booking_cancelled"
	TemplateBookingRejected      = "booking_rejected"
	TemplateBookingCompleted     = "booking_completed"
	TemplateTourBookingReceived  = "tour_booking_received"
	TemplateTourBookingConfirmed = "tour_booking_confirmed"
	TemplateTourBookingCancelled = "tour_booking_cancelled"
	TemplateTourBookingRejected  = "tour_booking_rejected"
	TemplateTourBookingCompleted = "tour_booking_completed"
	TemplateInquiryReceived      = "inquiry_received"
	TemplateContactReceived      = "contact_received"
)

// TypeEmailDelivery is the asynq task type for outbound notifications.
const TypeEmailDelivery = "email:deliver"

// EmailTaskPayload is the wire payload of an email delivery task.
type EmailTaskPayload struct {
	To         string                 `json:"to"`
	TemplateID string                 `json:"template_id"`
	Data       map[string]interface{} `json:"data"`
}

// Notifier dispatches a lifecycle notification. Implementations must be
// non-blocking from the caller's point of view; errors are for logging only
// and are never part of the transactional contract.
type Notifier interface {
	Dispatch(ctx context.Context, to, templateID string, data map[string]interface{}) error
}

// TaskNotifier enqueues email delivery tasks on asynq.
type TaskNotifier struct {
	client *asynq.Client
}

// NewTaskNotifier creates a Notifier backed by the given asynq client.
func NewTaskNotifier(client *asynq.Client) *TaskNotifier {
	return &TaskNotifier{client: client}
}

// Dispatch enqueues an email delivery task on the default queue.
func (n *TaskNotifier) Dispatch(ctx context.Context, to, templateID string, data map[string]interface{}) error {
	payload, err := json.Marshal(EmailTaskPayload{To: to, TemplateID: templateID, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	task := asynq.NewTask(TypeEmailDelivery, payload)
	if _, err := n.client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue email task (template %s): %w", templateID, err)
	}
	return nil
}

// LogNotifier logs instead of delivering. Used when no broker is configured.
type LogNotifier struct{}

// Dispatch logs the notification.
func (n *LogNotifier) Dispatch(ctx context.Context, to, templateID string, data map[string]interface{}) error {
	log.Printf("notify (logged): to=%s template=%s data=%v", to, templateID, data)
	return nil
}
