package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/store"
	"github.com/vovakirdan/wirechat-relay/internal/uploads"
)

// UploadHandlers stores uploaded files and publishes them to rooms.
type UploadHandlers struct {
	hub       *core.Hub
	storage   *uploads.Storage
	scheduler *uploads.Scheduler
	log       *zerolog.Logger
}

// NewUploadHandlers creates a new upload handlers instance.
func NewUploadHandlers(hub *core.Hub, storage *uploads.Storage, scheduler *uploads.Scheduler, logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{
		hub:       hub,
		storage:   storage,
		scheduler: scheduler,
		log:       logger,
	}
}

// UploadForm represents the multipart fields sent with a file.
type UploadForm struct {
	Room     string `form:"room" binding:"required"`
	Username string `form:"username" binding:"required"`
}

// UploadResponse represents the upload response body.
type UploadResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath,omitempty"`
}

// Upload stores the file, shares it with the room and schedules its deletion.
// POST /upload
func (h *UploadHandlers) Upload(c *gin.Context) {
	var form UploadForm
	if err := c.ShouldBind(&form); err != nil {
		h.respondBindError(c, err, "invalid upload form")
		return
	}
	if !h.hub.HasRoom(form.Room) {
		c.JSON(http.StatusBadRequest, UploadResponse{Success: false})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = uploads.ErrMissingFile
		}
		h.respondBindError(c, err, "invalid upload file")
		return
	}

	file := h.storage.Prepare(fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, file.Path); err != nil {
		h.log.Error().Err(err).Str("path", file.Path).Msg("failed to store upload")
		c.JSON(http.StatusInternalServerError, UploadResponse{Success: false})
		return
	}

	ctx := c.Request.Context()
	h.scheduler.Schedule(ctx, &store.Upload{
		Path:     file.Path,
		Link:     file.Link,
		Room:     form.Room,
		Username: form.Username,
	})

	err = h.hub.Submit(ctx, &core.Command{
		Kind:       core.CommandShareFile,
		Room:       form.Room,
		Name:       form.Username,
		Attachment: &core.Attachment{Link: file.Link, Label: file.Label},
	})
	if err != nil {
		h.log.Warn().Err(err).Str("path", file.Path).Msg("failed to publish upload")
	}

	h.log.Info().Str("path", file.Path).Str("room", form.Room).Str("name", form.Username).Msg("file uploaded")
	c.JSON(http.StatusOK, UploadResponse{Success: true, FilePath: file.Link})
}

func (h *UploadHandlers) respondBindError(c *gin.Context, err error, msg string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.JSON(http.StatusRequestEntityTooLarge, UploadResponse{Success: false})
		return
	}
	h.log.Debug().Err(err).Msg(msg)
	c.JSON(http.StatusBadRequest, UploadResponse{Success: false})
}
