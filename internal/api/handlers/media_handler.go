package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/storage"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/tasks"
)

// MediaHandler accepts admin image uploads, stores them on the media host
// and queues background optimization.
type MediaHandler struct {
	media      storage.IMediaStorage
	taskClient *asynq.Client
	maxSizeMB  int
}

func NewMediaHandler(media storage.IMediaStorage, taskClient *asynq.Client, maxSizeMB int) *MediaHandler {
	return &MediaHandler{media: media, taskClient: taskClient, maxSizeMB: maxSizeMB}
}

func (h *MediaHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if h.maxSizeMB > 0 && fileHeader.Size > int64(h.maxSizeMB)*1024*1024 {
		badRequest(c, "file is too large")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png":
	default:
		badRequest(c, "only jpeg and png images are accepted")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, err)
		return
	}

	folder := c.DefaultPostForm("folder", "listings")
	result, err := h.media.Upload(c.Request.Context(), data, fileHeader.Filename, contentType, folder)
	if err != nil {
		respondError(c, err)
		return
	}

	// Optimization runs out of band; the URL is valid immediately.
	if h.taskClient != nil {
		if task, err := tasks.NewImageProcessTask(result.Key); err == nil {
			if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task, asynq.Queue("images")); err != nil {
				log.Printf("failed to enqueue image processing for %s: %v", result.Key, err)
			}
		}
	}

	respondOK(c, http.StatusCreated, "file uploaded", gin.H{"url": result.URL, "key": result.Key})
}

func (h *MediaHandler) Delete(c *gin.Context) {
	var input struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.URL == "" {
		badRequest(c, "url is required")
		return
	}
	key, err := h.media.KeyFromURL(input.URL)
	if err != nil {
		badRequest(c, "url does not belong to the media host")
		return
	}
	if err := h.media.Delete(c.Request.Context(), key); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "file deleted", nil)
}
