package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/0xacademy/academy/api"
	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/ports"
)

// Notice texts emitted by the Uploader
const (
	NoticeSelectVideo    = "Please select a video file"
	NoticeFileTooLarge   = "File too large (max 2GB)"
	NoticeSelectFirst    = "Select a video file first"
	NoticeUploadComplete = "Upload complete! The video is being processed..."
	NoticeUploadFailed   = "Upload failed. Please try again."
)

const (
	DefaultTransferTimeout = 10 * time.Minute
	probeTimeout           = 30 * time.Second
	// transferShare is the progress reserved for bytes on the wire; the rest waits for the host's answer
	transferShare = 95.0
)

// UploadAPI is the part of the backend the Uploader talks to
type UploadAPI interface {
	UploadURL(ctx context.Context, courseID, lessonID string) (*core.UploadTarget, error)
}

// UploadSnapshot is a point-in-time view of an upload session
type UploadSnapshot struct {
	Status          core.UploadStatus
	Progress        float64
	FileName        string
	FileSize        int64
	DurationSeconds *float64
	CourseID        string
	LessonID        string
}

// Uploader runs the select → upload URL → transfer → processing flow for one course
type Uploader struct {
	api        UploadAPI
	notifier   ports.Notifier
	logger     *slog.Logger
	httpClient *http.Client
	prober     ports.DurationProber
	timeout    time.Duration
	courseID   string

	onComplete func(videoID string)
	onStart    func()
	onProgress func(percent float64)
	onStatus   func(status core.UploadStatus)

	mu         sync.Mutex
	lessonID   string
	file       *VideoFile
	duration   *float64
	probed     chan struct{}
	status     core.UploadStatus
	progress   float64
	generation uint64
	running    bool
	cancel     context.CancelFunc
}

// UploadOption configures an Uploader
type UploadOption func(*Uploader)

// WithCompletion is called with the video id once the host accepted the file
func WithCompletion(fn func(videoID string)) UploadOption {
	return func(u *Uploader) { u.onComplete = fn }
}

// WithStart is called when a transfer begins
func WithStart(fn func()) UploadOption {
	return func(u *Uploader) { u.onStart = fn }
}

// WithProgress receives every progress change, 0 to 100
func WithProgress(fn func(percent float64)) UploadOption {
	return func(u *Uploader) { u.onProgress = fn }
}

// WithStatus receives every status transition
func WithStatus(fn func(status core.UploadStatus)) UploadOption {
	return func(u *Uploader) { u.onStatus = fn }
}

// WithTransferTimeout bounds the upload to the video host (DefaultTransferTimeout when unset)
func WithTransferTimeout(d time.Duration) UploadOption {
	return func(u *Uploader) { u.timeout = d }
}

// WithProber enables background duration extraction on Select
func WithProber(p ports.DurationProber) UploadOption {
	return func(u *Uploader) { u.prober = p }
}

// WithHTTPClient sets the client used for the transfer. It should carry no Timeout of its own.
func WithHTTPClient(c *http.Client) UploadOption {
	return func(u *Uploader) { u.httpClient = c }
}

// WithUploadLogger sets the logger; slog.Default is used otherwise
func WithUploadLogger(l *slog.Logger) UploadOption {
	return func(u *Uploader) { u.logger = l }
}

// NewUploader creates an upload coordinator bound to courseID and an optional lessonID
func NewUploader(uploadAPI UploadAPI, notifier ports.Notifier, courseID, lessonID string, opts ...UploadOption) *Uploader {
	u := &Uploader{
		api:        uploadAPI,
		notifier:   notifier,
		logger:     slog.Default(),
		httpClient: &http.Client{},
		timeout:    DefaultTransferTimeout,
		courseID:   courseID,
		lessonID:   lessonID,
		status:     core.UploadIdle,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.With("component", "upload", "course_id", courseID)
	return u
}

// Select validates file and makes it the pending upload.
// A rejected file leaves the current state untouched.
func (u *Uploader) Select(file *VideoFile) error {
	if file == nil {
		return core.ErrNoFile
	}
	if file.open == nil {
		u.notifier.Error(NoticeSelectVideo)
		return fmt.Errorf("%w: %s has no content", core.ErrNoFile, file.Name)
	}
	if !strings.HasPrefix(file.ContentType, "video/") {
		u.notifier.Error(NoticeSelectVideo)
		return fmt.Errorf("%w: %s", core.ErrInvalidFileType, file.ContentType)
	}
	if file.Size > core.MaxVideoSize {
		u.notifier.Error(NoticeFileTooLarge)
		return fmt.Errorf("%w: %s", core.ErrFileTooLarge, core.FormatFileSize(file.Size))
	}

	u.mu.Lock()
	if u.running {
		u.mu.Unlock()
		return core.ErrUploadInProgress
	}
	u.generation++
	gen := u.generation
	u.file = file
	u.duration = nil
	u.probed = nil
	if u.prober != nil {
		u.probed = make(chan struct{})
	}
	done := u.probed
	u.status = core.UploadIdle
	u.progress = 0
	u.mu.Unlock()

	u.emitStatus(core.UploadIdle)
	u.emitProgress(0)

	if done != nil {
		go u.probe(gen, file, done)
	}
	return nil
}

// probe reads the duration in the background; failures only lose the duration
func (u *Uploader) probe(gen uint64, file *VideoFile, done chan struct{}) {
	defer close(done)
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	r, err := file.Open()
	if err != nil {
		u.logger.Debug("duration probe skipped", "error", err)
		return
	}
	defer r.Close()

	seconds, err := u.prober.ProbeDuration(ctx, r)
	if err != nil {
		u.logger.Debug("duration probe failed", "file", file.Name, "error", err)
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.generation != gen {
		return
	}
	u.duration = &seconds
}

// Start uploads the selected file. It returns the video id on success and
// a nil result with an error otherwise; the completion callback fires only on success.
// Start runs from idle or error only. A finished upload needs Reset or a new Select.
func (u *Uploader) Start(ctx context.Context) (*core.UploadResult, error) {
	u.mu.Lock()
	if u.file == nil {
		u.mu.Unlock()
		u.notifier.Error(NoticeSelectFirst)
		return nil, core.ErrNoFile
	}
	if u.running {
		u.mu.Unlock()
		return nil, core.ErrUploadInProgress
	}
	if u.status != core.UploadIdle && u.status != core.UploadError {
		u.mu.Unlock()
		return nil, fmt.Errorf("%w: status %s", core.ErrUploadFinished, u.status)
	}
	ctx, cancel := context.WithCancel(ctx)
	u.running = true
	u.cancel = cancel
	gen := u.generation
	file := u.file
	lessonID := u.lessonID
	u.status = core.UploadUploading
	u.progress = 0
	u.mu.Unlock()

	defer func() {
		cancel()
		u.mu.Lock()
		if u.generation == gen {
			u.running = false
			u.cancel = nil
		}
		u.mu.Unlock()
	}()

	log := u.logger.With("lesson_id", lessonID, "file", file.Name, "size", file.Size)

	if u.onStart != nil {
		u.onStart()
	}
	u.emitStatus(core.UploadUploading)
	u.emitProgress(0)

	target, err := u.api.UploadURL(api.Quiet(ctx), u.courseID, lessonID)
	if err != nil {
		return u.fail(gen, log, fmt.Errorf("get upload url: %w", err))
	}
	log = log.With("video_id", target.VideoID)

	tctx, tcancel := context.WithTimeout(ctx, u.timeout)
	err = u.transfer(tctx, target.UploadURL, file, func(sent, total int64) {
		u.advance(gen, math.Min(float64(sent)/float64(total)*transferShare, transferShare))
	})
	tcancel()
	if err != nil {
		return u.fail(gen, log, err)
	}

	u.advance(gen, 100)
	if !u.setStatus(gen, core.UploadProcessing) {
		return nil, core.ErrUploadAborted
	}
	log.Info("video uploaded")
	u.notifier.Success(NoticeUploadComplete)

	if u.onComplete != nil && target.VideoID != "" {
		u.onComplete(target.VideoID)
	}
	u.setStatus(gen, core.UploadSuccess)

	return &core.UploadResult{VideoID: target.VideoID}, nil
}

func (u *Uploader) fail(gen uint64, log *slog.Logger, err error) (*core.UploadResult, error) {
	if !u.setStatus(gen, core.UploadError) {
		log.Debug("upload aborted", "error", err)
		return nil, fmt.Errorf("%w: %v", core.ErrUploadAborted, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn("upload timed out", "timeout", u.timeout)
	} else {
		log.Warn("upload failed", "error", err)
	}
	u.notifier.Error(NoticeUploadFailed)
	return nil, err
}

// Reset aborts any running transfer and clears the session back to idle
func (u *Uploader) Reset() {
	u.mu.Lock()
	u.generation++
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
	u.running = false
	u.file = nil
	u.duration = nil
	u.probed = nil
	u.status = core.UploadIdle
	u.progress = 0
	u.mu.Unlock()

	u.emitStatus(core.UploadIdle)
	u.emitProgress(0)
}

// SetLessonID rebinds the lesson the next Start uploads for
func (u *Uploader) SetLessonID(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lessonID = id
}

func (u *Uploader) HasFile() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.file != nil
}

func (u *Uploader) Status() core.UploadStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

func (u *Uploader) Progress() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.progress
}

// DurationMinutes returns the probed duration in minutes once known
func (u *Uploader) DurationMinutes() (float64, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.duration == nil {
		return 0, false
	}
	return *u.duration / 60, true
}

// AwaitDuration waits for the background duration read of the selected file
// and returns DurationMinutes. It returns early when ctx ends.
func (u *Uploader) AwaitDuration(ctx context.Context) (float64, bool) {
	u.mu.Lock()
	done := u.probed
	u.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return u.DurationMinutes()
}

func (u *Uploader) Snapshot() UploadSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()

	s := UploadSnapshot{
		Status:   u.status,
		Progress: u.progress,
		CourseID: u.courseID,
		LessonID: u.lessonID,
	}
	if u.file != nil {
		s.FileName = u.file.Name
		s.FileSize = u.file.Size
	}
	if u.duration != nil {
		d := *u.duration
		s.DurationSeconds = &d
	}
	return s
}

func (u *Uploader) setStatus(gen uint64, status core.UploadStatus) bool {
	u.mu.Lock()
	if u.generation != gen {
		u.mu.Unlock()
		return false
	}
	u.status = status
	u.mu.Unlock()

	u.emitStatus(status)
	return true
}

// advance moves progress forward only
func (u *Uploader) advance(gen uint64, percent float64) {
	u.mu.Lock()
	if u.generation != gen || percent <= u.progress {
		u.mu.Unlock()
		return
	}
	u.progress = percent
	u.mu.Unlock()

	u.emitProgress(percent)
}

func (u *Uploader) emitStatus(status core.UploadStatus) {
	if u.onStatus != nil {
		u.onStatus(status)
	}
}

func (u *Uploader) emitProgress(percent float64) {
	if u.onProgress != nil {
		u.onProgress(percent)
	}
}
