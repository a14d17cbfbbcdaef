package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for uploaded images
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/config"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/email"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/notify"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/storage"
)

// Task types processed by the workers.
const (
	TypeEmailDelivery = notify.TypeEmailDelivery
	TypeImageProcess  = "image:process"
)

// --- Task Client (Enqueuing tasks) ---

// NewClient creates an asynq client reusing the Redis connection options.
func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg          *config.Config
	emailSender  email.Sender
	mediaStorage storage.IMediaStorage
}

// NewTaskProcessor creates a TaskProcessor with its collaborators.
func NewTaskProcessor(cfg *config.Config, emailSender email.Sender, mediaStorage storage.IMediaStorage) *TaskProcessor {
	return &TaskProcessor{
		cfg:          cfg,
		emailSender:  emailSender,
		mediaStorage: mediaStorage,
	}
}

// SetupServer configures an Asynq server instance for the given worker role
// and returns it without starting it; main runs it.
func SetupServer(rdb *redis.Client, isImageWorker bool, isBgWorker bool) *asynq.Server {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
				"images":   5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	if !isBgWorker && !isImageWorker {
		// API mode doesn't run a task server, only enqueues
		return nil
	}
	return srv
}

// Mux registers the handlers appropriate for the worker role.
func (p *TaskProcessor) Mux(isImageWorker, isBgWorker bool) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	if isBgWorker {
		mux.HandleFunc(TypeEmailDelivery, p.HandleEmailDeliveryTask)
	}
	if isImageWorker {
		mux.HandleFunc(TypeImageProcess, p.HandleImageProcessTask)
	}
	return mux
}

// --- Task Handlers ---

// HandleEmailDeliveryTask renders a built-in template and hands the raw
// message to the email sender. Unknown templates and malformed payloads are
// not retried.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload notify.EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}

	tmpl, ok := builtinTemplates[payload.TemplateID]
	if !ok {
		log.Printf("Unknown email template %q for %s", payload.TemplateID, payload.To)
		return fmt.Errorf("unknown email template %s: %w", payload.TemplateID, asynq.SkipRetry)
	}

	// Simple placeholder replacement (replace {{.key}})
	subjectRendered := tmpl.Subject
	bodyRendered := tmpl.Body
	for key, val := range payload.Data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		valueStr := fmt.Sprintf("%v", val)
		subjectRendered = strings.ReplaceAll(subjectRendered, placeholder, valueStr)
		bodyRendered = strings.ReplaceAll(bodyRendered, placeholder, valueStr)
	}
	// Drop placeholders with no data (e.g. optional cancellation reason).
	bodyRendered = stripUnfilled(bodyRendered)

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = "noreply@example.com"
		log.Printf("Warning: SmtpFromAddress not configured, using fallback %s for email to %s", fromAddress, payload.To)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", payload.To))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", fromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subjectRendered))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(bodyRendered)

	if err := p.emailSender.Send(ctx, []string{payload.To}, subjectRendered, []byte(sb.String())); err != nil {
		log.Printf("Error sending email to %s (template %s): %v", payload.To, payload.TemplateID, err)
		return err // Retry delivery failures
	}

	return nil
}

// stripUnfilled removes lines that still contain unreplaced placeholders.
func stripUnfilled(body string) string {
	lines := strings.Split(body, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, "{{.") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// ImageTaskPayload identifies an uploaded object to normalize.
type ImageTaskPayload struct {
	Key string `json:"key"`
}

// NewImageProcessTask builds the task for an uploaded object key.
func NewImageProcessTask(key string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageTaskPayload{Key: key})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image task payload: %w", err)
	}
	return asynq.NewTask(TypeImageProcess, payload, asynq.Queue("images")), nil
}

// HandleImageProcessTask downloads an uploaded image, caps its dimensions,
// re-encodes it as JPEG and writes it back under the same key.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	data, err := p.mediaStorage.Download(ctx, payload.Key)
	if err != nil {
		log.Printf("Image task: failed to download %s: %v", payload.Key, err)
		return err // Retry transient storage errors
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("Image task: object %s is not a decodable image (%v)", payload.Key, err)
		return fmt.Errorf("undecodable image %s: %w", payload.Key, asynq.SkipRetry)
	}

	maxDim := uint(p.cfg.ImageMaxDimension)
	bounds := img.Bounds()
	if uint(bounds.Dx()) <= maxDim && uint(bounds.Dy()) <= maxDim && format == "jpeg" {
		return nil // Already within bounds, nothing to do
	}

	resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode image %s: %w", payload.Key, err)
	}

	if err := p.mediaStorage.Put(ctx, payload.Key, buf.Bytes(), "image/jpeg"); err != nil {
		log.Printf("Image task: re-upload of %s failed: %v", payload.Key, err)
		return err
	}

	log.Printf("Image task: normalized %s (%dx%d -> max %d)", payload.Key, bounds.Dx(), bounds.Dy(), maxDim)
	return nil
}
