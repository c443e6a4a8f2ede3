package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/0xacademy/academy/ports"
)

// VideoHandlers issues one-time upload destinations and plays the video host's upload endpoint
type VideoHandlers struct {
	catalog   *Catalog
	events    ports.EventPublisher
	prober    ports.DurationProber
	metrics   *Metrics
	logger    *slog.Logger
	publicURL string
	maxSize   int64
}

func (h *VideoHandlers) baseURL(c *gin.Context) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// UploadURL reserves a video asset and returns where to send the file
func (h *VideoHandlers) UploadURL(c *gin.Context) {
	var req struct {
		CourseID string `json:"courseId" binding:"required"`
		LessonID string `json:"lessonId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "courseId is required")
		return
	}

	video, err := h.catalog.CreateVideo(req.CourseID, req.LessonID, userID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploadURL": h.baseURL(c) + "/uploads/" + video.ID,
		"videoId":   video.ID,
	})
}

func (h *VideoHandlers) Get(c *gin.Context) {
	video, err := h.catalog.Video(c.Param("id"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": video})
}

func (h *VideoHandlers) Delete(c *gin.Context) {
	if err := h.catalog.DeleteVideo(c.Param("id"), userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

var errTooLarge = errors.New("upload exceeds size limit")

// Receive accepts the multipart "file" field for a reserved asset
func (h *VideoHandlers) Receive(c *gin.Context) {
	videoID := c.Param("videoId")
	log := h.logger.With("video_id", videoID)

	mr, err := c.Request.MultipartReader()
	if err != nil {
		abort(c, http.StatusBadRequest, "Expected multipart/form-data")
		return
	}

	var (
		size     int64
		duration *float64
		found    bool
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			abort(c, http.StatusBadRequest, "Malformed multipart body")
			return
		}
		if part.FormName() != "file" {
			_, _ = io.Copy(io.Discard, part)
			continue
		}

		found = true
		size, duration, err = h.spool(c, part)
		if err != nil {
			if errors.Is(err, errTooLarge) {
				abort(c, http.StatusRequestEntityTooLarge, "File too large")
				return
			}
			fail(c, err)
			return
		}
	}
	if !found {
		abort(c, http.StatusBadRequest, "Missing file field")
		return
	}

	video, err := h.catalog.CompleteUpload(videoID, size, duration)
	if err != nil {
		fail(c, err)
		return
	}

	h.metrics.RecordUpload(size)
	if err := h.events.PublishVideoUploaded(c.Request.Context(), videoID, size); err != nil {
		log.Warn("failed to publish upload event", "error", err)
	}
	log.Info("video received", "size", size)

	c.JSON(http.StatusOK, gin.H{"success": true, "result": gin.H{"uid": video.ID, "status": video.Status}})
}

// spool writes the part to a temp file so its duration can be probed
func (h *VideoHandlers) spool(c *gin.Context, part io.Reader) (int64, *float64, error) {
	f, err := os.CreateTemp("", "academy-upload-*")
	if err != nil {
		return 0, nil, fmt.Errorf("create spool file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(f.Name())
	}()

	size, err := io.Copy(f, io.LimitReader(part, h.maxSize+1))
	if err != nil {
		return 0, nil, fmt.Errorf("receive upload: %w", err)
	}
	if size > h.maxSize {
		return 0, nil, errTooLarge
	}

	if h.prober == nil {
		return size, nil, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return size, nil, nil
	}
	seconds, err := h.prober.ProbeDuration(c.Request.Context(), f)
	if err != nil {
		h.logger.Debug("duration probe failed", "error", err)
		return size, nil, nil
	}
	return size, &seconds, nil
}
