package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course levels accepted by the backend
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Course mirrors the backend course resource
type Course struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	PriceUSD     *decimal.Decimal `json:"price_usd,omitempty"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
	Category     string           `json:"category,omitempty"`
	Level        string           `json:"level,omitempty"`
	IsPublished  bool             `json:"is_published"`
	Tags         []string         `json:"tags,omitempty"`
	InstructorID string           `json:"instructor_id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    *time.Time       `json:"updated_at,omitempty"`
	Instructor   *Instructor      `json:"instructor,omitempty"`
	Lessons      []Lesson         `json:"lessons,omitempty"`
}

// Instructor is the embedded author summary of a course
type Instructor struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"`
	DisplayName   string `json:"display_name,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
}

// IsFree reports whether the course has no price
func (c *Course) IsFree() bool {
	return c.PriceUSD == nil || c.PriceUSD.IsZero()
}

// Lesson mirrors the backend lesson resource. VideoURL holds the video host asset identifier.
type Lesson struct {
	ID              string     `json:"id"`
	CourseID        string     `json:"course_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	VideoURL        string     `json:"video_url,omitempty"`
	Content         string     `json:"content,omitempty"`
	Order           int        `json:"order"`
	DurationMinutes *float64   `json:"duration_minutes,omitempty"`
	IsFree          bool       `json:"is_free"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// HasVideo reports whether an uploaded video is attached
func (l *Lesson) HasVideo() bool {
	return l.VideoURL != ""
}

// Enrollment links a user to a course
type Enrollment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CourseID   string    `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Course     *Course   `json:"course,omitempty"`
}

// Progress is the completion record of one lesson
type Progress struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	LessonID     string     `json:"lesson_id"`
	EnrollmentID string     `json:"enrollment_id"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// CourseProgress summarises a user's progress through one enrolled course
type CourseProgress struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	CourseID           string           `json:"course_id"`
	EnrolledAt         time.Time        `json:"enrolled_at"`
	Course             CourseSummary    `json:"course"`
	Progress           []LessonProgress `json:"progress"`
	ProgressPercentage int              `json:"progressPercentage"`
	CompletedLessons   int              `json:"completedLessons"`
	TotalLessons       int              `json:"totalLessons"`
}

// CourseSummary is the short course form embedded in progress and certificates
type CourseSummary struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	ThumbnailURL string             `json:"thumbnail_url,omitempty"`
	Instructor   *InstructorSummary `json:"instructor,omitempty"`
}

type InstructorSummary struct {
	DisplayName   string `json:"display_name,omitempty"`
	WalletAddress string `json:"wallet_address"`
}

// LessonProgress is the completion state of one lesson inside CourseProgress
type LessonProgress struct {
	LessonID    string     `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Certificate is issued once every lesson of a course is completed
type Certificate struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	CourseID       string         `json:"course_id"`
	IssuedAt       time.Time      `json:"issued_at"`
	CertificateURL string         `json:"certificate_url,omitempty"`
	Course         *CourseSummary `json:"course,omitempty"`
}

// Video is the backend view of a video host asset
type Video struct {
	ID          string         `json:"id"`
	PlaybackURL string         `json:"playbackUrl"`
	Thumbnail   string         `json:"thumbnail"`
	Status      string         `json:"status"`
	Duration    *float64       `json:"duration,omitempty"`
	Size        *int64         `json:"size,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
