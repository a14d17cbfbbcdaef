package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/config"
)

// RedisSender implements the Sender interface by storing emails in Redis.
// Used when MOCK_SERVICES is enabled so end-to-end tests can fetch the last
// notification for an address via the service API.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{
		client: client,
		cfg:    cfg,
	}
}

// templateFromSubject guesses the lifecycle template from the rendered
// subject so tests can key on it. Heuristic only.
func templateFromSubject(subject string) string {
	lower := strings.ToLower(subject)
	switch {
	case strings.Contains(lower, "tour booking"):
		switch {
		case strings.Contains(lower, "confirmed"):
			return "tour_booking_confirmed"
		case strings.Contains(lower, "cancelled"):
			return "tour_booking_cancelled"
		case strings.Contains(lower, "rejected"):
			return "tour_booking_rejected"
		case strings.Contains(lower, "completed"):
			return "tour_booking_completed"
		default:
			return "tour_booking_received"
		}
	case strings.Contains(lower, "booking"):
		switch {
		case strings.Contains(lower, "confirmed"):
			return "booking_confirmed"
		case strings.Contains(lower, "cancelled"):
			return "booking_cancelled"
		case strings.Contains(lower, "rejected"):
			return "booking_rejected"
		case strings.Contains(lower, "completed"):
			return "booking_completed"
		default:
			return "booking_received"
		}
	case strings.Contains(lower, "inquiry"):
		return "inquiry_received"
	case strings.Contains(lower, "contact"):
		return "contact_received"
	}
	return "unknown"
}

// Send stores a representation of the email in Redis instead of sending it.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	templateID := templateFromSubject(subject)

	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}

	emailData := map[string]interface{}{
		"to":       strings.Join(to, ", "),
		"from":     s.cfg.SmtpFromAddress,
		"subject":  subject,
		"body":     string(rawMessage),
		"sent_at":  time.Now().UTC().Format(time.RFC3339Nano),
		"template": templateID,
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := fmt.Sprintf("mockemail:%s:%s", primaryTo, templateID)
	ttl := 5 * time.Minute

	if err := s.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock email stored in Redis key '%s' (TTL: %v, Subject: %s)", key, ttl, subject)
	return nil
}
