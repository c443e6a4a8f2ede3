package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/0xacademy/academy/core"
)

// ListCoursesParams filters the public catalogue
type ListCoursesParams struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

func (p ListCoursesParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	return q
}

// CourseList is one page of courses
type CourseList struct {
	Courses    []core.Course   `json:"courses"`
	Pagination core.Pagination `json:"pagination"`
}

// CourseDetail is a course plus whether the caller may watch every lesson
type CourseDetail struct {
	Course        core.Course `json:"course"`
	HasFullAccess bool        `json:"hasFullAccess"`
}

// LessonCompletion is the result of marking a lesson
type LessonCompletion struct {
	Progress        core.Progress `json:"progress"`
	CourseCompleted bool          `json:"courseCompleted"`
}

type courseEnvelope struct {
	Course *core.Course `json:"course"`
}

type lessonEnvelope struct {
	Lesson *core.Lesson `json:"lesson"`
}

type successEnvelope struct {
	Success bool `json:"success"`
}

func (c *Client) ListCourses(ctx context.Context, params ListCoursesParams) (*CourseList, error) {
	var resp CourseList
	if err := c.get(ctx, "/courses", params.query(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Course(ctx context.Context, id string) (*CourseDetail, error) {
	var resp CourseDetail
	if err := c.get(ctx, "/courses/"+segment(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCourse validates in and creates the course
func (c *Client) CreateCourse(ctx context.Context, in *core.CourseInput) (*core.Course, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var resp courseEnvelope
	if err := c.post(ctx, "/courses", in, &resp); err != nil {
		return nil, err
	}
	return resp.Course, nil
}

// UpdateCourse validates and applies a partial update
func (c *Client) UpdateCourse(ctx context.Context, id string, in *core.CourseUpdate) (*core.Course, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var resp courseEnvelope
	if err := c.patch(ctx, "/courses/"+segment(id), in, &resp); err != nil {
		return nil, err
	}
	return resp.Course, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id string) (bool, error) {
	var resp successEnvelope
	if err := c.delete(ctx, "/courses/"+segment(id), &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// PublishCourse publishes (or unpublishes) a course
func (c *Client) PublishCourse(ctx context.Context, id string, publish bool) (*core.Course, error) {
	var resp courseEnvelope
	body := map[string]bool{"publish": publish}
	if err := c.post(ctx, "/courses/"+segment(id)+"/publish", body, &resp); err != nil {
		return nil, err
	}
	return resp.Course, nil
}

func (c *Client) Enroll(ctx context.Context, courseID string) (*core.Enrollment, error) {
	var resp struct {
		Enrollment *core.Enrollment `json:"enrollment"`
	}
	if err := c.post(ctx, "/courses/"+segment(courseID)+"/enroll", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Enrollment, nil
}

// Enrolled lists the caller's enrollments with their courses
func (c *Client) Enrolled(ctx context.Context) ([]core.Enrollment, error) {
	var resp struct {
		Enrollments []core.Enrollment `json:"enrollments"`
	}
	if err := c.get(ctx, "/courses/enrolled", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Enrollments, nil
}

func (c *Client) Lessons(ctx context.Context, courseID string) ([]core.Lesson, error) {
	var resp struct {
		Lessons []core.Lesson `json:"lessons"`
	}
	if err := c.get(ctx, "/courses/"+segment(courseID)+"/lessons", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Lessons, nil
}

func (c *Client) CreateLesson(ctx context.Context, courseID string, in *core.LessonInput) (*core.Lesson, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var resp lessonEnvelope
	if err := c.post(ctx, "/courses/"+segment(courseID)+"/lessons", in, &resp); err != nil {
		return nil, err
	}
	return resp.Lesson, nil
}

func (c *Client) UpdateLesson(ctx context.Context, courseID, lessonID string, in *core.LessonUpdate) (*core.Lesson, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var resp lessonEnvelope
	path := "/courses/" + segment(courseID) + "/lessons/" + segment(lessonID)
	if err := c.patch(ctx, path, in, &resp); err != nil {
		return nil, err
	}
	return resp.Lesson, nil
}

func (c *Client) DeleteLesson(ctx context.Context, courseID, lessonID string) (bool, error) {
	var resp successEnvelope
	path := "/courses/" + segment(courseID) + "/lessons/" + segment(lessonID)
	if err := c.delete(ctx, path, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}
