package http

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0xacademy/academy/core"
)

// videoRecord is a video host asset plus its binding
type videoRecord struct {
	video    core.Video
	courseID string
	lessonID string
	ownerID  string
	uploaded bool
}

// Catalog is the in-memory data set of the dev backend.
// Every getter returns copies so handlers never share mutable state.
type Catalog struct {
	mu sync.RWMutex

	users        map[string]*core.User
	byAddress    map[string]string
	courses      map[string]*core.Course
	lessons      map[string]*core.Lesson
	enrollments  map[string]*core.Enrollment
	progress     map[string]*core.Progress
	certificates map[string]*core.Certificate
	videos       map[string]*videoRecord

	now func() time.Time
}

func NewCatalog() *Catalog {
	return &Catalog{
		users:        make(map[string]*core.User),
		byAddress:    make(map[string]string),
		courses:      make(map[string]*core.Course),
		lessons:      make(map[string]*core.Lesson),
		enrollments:  make(map[string]*core.Enrollment),
		progress:     make(map[string]*core.Progress),
		certificates: make(map[string]*core.Certificate),
		videos:       make(map[string]*videoRecord),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func pairKey(a, b string) string { return a + "/" + b }

// UserByAddress returns the user for address, creating a student on first sight
func (c *Catalog) UserByAddress(address string) core.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(address)
	if id, ok := c.byAddress[key]; ok {
		return *c.users[id]
	}

	u := &core.User{
		ID:            uuid.NewString(),
		WalletAddress: address,
		Role:          core.RoleStudent,
		CreatedAt:     c.now(),
	}
	c.users[u.ID] = u
	c.byAddress[key] = u.ID
	return *u
}

func (c *Catalog) User(id string) (core.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.users[id]
	if !ok {
		return core.User{}, notFound("User")
	}
	return *u, nil
}

// PublicUser looks a user up by wallet address without creating one
func (c *Catalog) PublicUser(address string) (core.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byAddress[strings.ToLower(address)]
	if !ok {
		return core.User{}, notFound("User")
	}
	u := *c.users[id]
	u.Email = ""
	return u, nil
}

func (c *Catalog) UpdateProfile(userID string, in *core.ProfileUpdate) (core.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.users[userID]
	if !ok {
		return core.User{}, notFound("User")
	}
	if in.DisplayName != nil {
		u.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.SocialLinks != nil {
		links := *in.SocialLinks
		u.SocialLinks = &links
	}
	now := c.now()
	u.UpdatedAt = &now
	return *u, nil
}

func (c *Catalog) BecomeInstructor(userID string) (core.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.users[userID]
	if !ok {
		return core.User{}, notFound("User")
	}
	if u.Role == core.RoleInstructor {
		return core.User{}, badRequest("You are already an instructor")
	}
	u.Role = core.RoleInstructor
	now := c.now()
	u.UpdatedAt = &now
	return *u, nil
}

func (c *Catalog) instructorLocked(userID string) *core.Instructor {
	u, ok := c.users[userID]
	if !ok {
		return nil
	}
	return &core.Instructor{
		ID:            u.ID,
		WalletAddress: u.WalletAddress,
		DisplayName:   u.DisplayName,
		AvatarURL:     u.AvatarURL,
	}
}

// courseLocked returns a copy of the course with its instructor and ordered lessons
func (c *Catalog) courseLocked(course *core.Course, withLessons bool) core.Course {
	out := *course
	out.Tags = append([]string(nil), course.Tags...)
	out.Instructor = c.instructorLocked(course.InstructorID)
	out.Lessons = nil
	if withLessons {
		out.Lessons = c.lessonsLocked(course.ID)
	}
	return out
}

func (c *Catalog) lessonsLocked(courseID string) []core.Lesson {
	var out []core.Lesson
	for _, l := range c.lessons {
		if l.CourseID == courseID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ListCourses pages through published courses matching the filter, newest first
func (c *Catalog) ListCourses(page, limit int, search, category string) ([]core.Course, core.Pagination) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 12
	}
	search = strings.ToLower(search)

	var matched []*core.Course
	for _, course := range c.courses {
		if !course.IsPublished {
			continue
		}
		if category != "" && !strings.EqualFold(course.Category, category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(course.Title), search) &&
			!strings.Contains(strings.ToLower(course.Description), search) {
			continue
		}
		matched = append(matched, course)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	out := make([]core.Course, 0, end-start)
	for _, course := range matched[start:end] {
		out = append(out, c.courseLocked(course, false))
	}
	return out, core.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Course returns the course and whether userID may watch every lesson.
// Unpublished courses are visible to their instructor only.
func (c *Catalog) Course(id, userID string) (core.Course, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	course, ok := c.courses[id]
	if !ok || (!course.IsPublished && course.InstructorID != userID) {
		return core.Course{}, false, notFound("Course")
	}

	full := c.hasAccessLocked(course, userID)
	out := c.courseLocked(course, true)
	if !full {
		for i := range out.Lessons {
			if !out.Lessons[i].IsFree {
				out.Lessons[i].VideoURL = ""
				out.Lessons[i].Content = ""
			}
		}
	}
	return out, full, nil
}

func (c *Catalog) hasAccessLocked(course *core.Course, userID string) bool {
	if userID == "" {
		return false
	}
	if course.InstructorID == userID {
		return true
	}
	_, enrolled := c.enrollments[pairKey(userID, course.ID)]
	return enrolled
}

func (c *Catalog) requireInstructorLocked(userID string) error {
	u, ok := c.users[userID]
	if !ok || u.Role != core.RoleInstructor {
		return forbidden("Only instructors can manage courses")
	}
	return nil
}

func (c *Catalog) ownedCourseLocked(courseID, userID string) (*core.Course, error) {
	course, ok := c.courses[courseID]
	if !ok {
		return nil, notFound("Course")
	}
	if course.InstructorID != userID {
		return nil, forbidden("You do not own this course")
	}
	return course, nil
}

func (c *Catalog) CreateCourse(userID string, in *core.CourseInput) (core.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInstructorLocked(userID); err != nil {
		return core.Course{}, err
	}

	course := &core.Course{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		PriceUSD:     in.PriceUSD,
		ThumbnailURL: in.ThumbnailURL,
		Category:     in.Category,
		Level:        in.Level,
		Tags:         append([]string(nil), in.Tags...),
		IsPublished:  in.IsPublished,
		InstructorID: userID,
		CreatedAt:    c.now(),
	}
	c.courses[course.ID] = course
	return c.courseLocked(course, false), nil
}

func (c *Catalog) UpdateCourse(courseID, userID string, in *core.CourseUpdate) (core.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	course, err := c.ownedCourseLocked(courseID, userID)
	if err != nil {
		return core.Course{}, err
	}
	if in.Title != nil {
		course.Title = *in.Title
	}
	if in.Description != nil {
		course.Description = *in.Description
	}
	if in.PriceUSD != nil {
		price := *in.PriceUSD
		course.PriceUSD = &price
	}
	if in.ThumbnailURL != nil {
		course.ThumbnailURL = *in.ThumbnailURL
	}
	if in.Category != nil {
		course.Category = *in.Category
	}
	if in.Level != nil {
		course.Level = *in.Level
	}
	if in.Tags != nil {
		course.Tags = append([]string(nil), in.Tags...)
	}
	if in.IsPublished != nil {
		course.IsPublished = *in.IsPublished
	}
	now := c.now()
	course.UpdatedAt = &now
	return c.courseLocked(course, false), nil
}

func (c *Catalog) PublishCourse(courseID, userID string, publish bool) (core.Course, error) {
	return c.UpdateCourse(courseID, userID, &core.CourseUpdate{IsPublished: &publish})
}

// DeleteCourse removes the course with its lessons, enrollments and progress
func (c *Catalog) DeleteCourse(courseID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.ownedCourseLocked(courseID, userID); err != nil {
		return err
	}
	delete(c.courses, courseID)
	for id, l := range c.lessons {
		if l.CourseID == courseID {
			c.deleteLessonLocked(id)
		}
	}
	for key, e := range c.enrollments {
		if e.CourseID == courseID {
			delete(c.enrollments, key)
		}
	}
	return nil
}

func (c *Catalog) Enroll(courseID, userID string) (core.Enrollment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	course, ok := c.courses[courseID]
	if !ok || !course.IsPublished {
		return core.Enrollment{}, notFound("Course")
	}
	if course.InstructorID == userID {
		return core.Enrollment{}, badRequest("You cannot enroll in your own course")
	}
	key := pairKey(userID, courseID)
	if _, ok := c.enrollments[key]; ok {
		return core.Enrollment{}, conflict("Already enrolled in this course")
	}

	e := &core.Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: c.now(),
	}
	c.enrollments[key] = e
	return *e, nil
}

// Enrolled lists the user's enrollments with their courses, newest first
func (c *Catalog) Enrolled(userID string) []core.Enrollment {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []core.Enrollment{}
	for _, e := range c.enrollments {
		if e.UserID != userID {
			continue
		}
		item := *e
		if course, ok := c.courses[e.CourseID]; ok {
			cc := c.courseLocked(course, false)
			item.Course = &cc
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out
}

// Teaching lists every course the user authored, published or not
func (c *Catalog) Teaching(userID string) []core.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []core.Course{}
	for _, course := range c.courses {
		if course.InstructorID == userID {
			out = append(out, c.courseLocked(course, true))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (c *Catalog) Lessons(courseID, userID string) ([]core.Lesson, error) {
	course, _, err := c.Course(courseID, userID)
	if err != nil {
		return nil, err
	}
	if course.Lessons == nil {
		return []core.Lesson{}, nil
	}
	return course.Lessons, nil
}

func (c *Catalog) CreateLesson(courseID, userID string, in *core.LessonInput) (core.Lesson, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.ownedCourseLocked(courseID, userID); err != nil {
		return core.Lesson{}, err
	}

	order := len(c.lessonsLocked(courseID)) + 1
	if in.Order != nil {
		order = *in.Order
	}
	l := &core.Lesson{
		ID:              uuid.NewString(),
		CourseID:        courseID,
		Title:           in.Title,
		Description:     in.Description,
		VideoURL:        in.VideoURL,
		Content:         in.Content,
		Order:           order,
		DurationMinutes: in.DurationMinutes,
		IsFree:          in.IsFree,
		CreatedAt:       c.now(),
	}
	c.lessons[l.ID] = l
	return *l, nil
}

func (c *Catalog) ownedLessonLocked(courseID, lessonID, userID string) (*core.Lesson, error) {
	if _, err := c.ownedCourseLocked(courseID, userID); err != nil {
		return nil, err
	}
	l, ok := c.lessons[lessonID]
	if !ok || l.CourseID != courseID {
		return nil, notFound("Lesson")
	}
	return l, nil
}

func (c *Catalog) UpdateLesson(courseID, lessonID, userID string, in *core.LessonUpdate) (core.Lesson, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.ownedLessonLocked(courseID, lessonID, userID)
	if err != nil {
		return core.Lesson{}, err
	}
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.VideoURL != nil {
		l.VideoURL = *in.VideoURL
	}
	if in.Content != nil {
		l.Content = *in.Content
	}
	if in.Order != nil {
		l.Order = *in.Order
	}
	if in.DurationMinutes != nil {
		d := *in.DurationMinutes
		l.DurationMinutes = &d
	}
	if in.IsFree != nil {
		l.IsFree = *in.IsFree
	}
	now := c.now()
	l.UpdatedAt = &now
	return *l, nil
}

func (c *Catalog) DeleteLesson(courseID, lessonID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.ownedLessonLocked(courseID, lessonID, userID); err != nil {
		return err
	}
	c.deleteLessonLocked(lessonID)
	return nil
}

func (c *Catalog) deleteLessonLocked(lessonID string) {
	delete(c.lessons, lessonID)
	for key, p := range c.progress {
		if p.LessonID == lessonID {
			delete(c.progress, key)
		}
	}
}

// MarkLesson records completion and issues the certificate when the course is done
func (c *Catalog) MarkLesson(lessonID, userID string, completed bool) (core.Progress, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lessons[lessonID]
	if !ok {
		return core.Progress{}, false, notFound("Lesson")
	}
	e, ok := c.enrollments[pairKey(userID, l.CourseID)]
	if !ok {
		return core.Progress{}, false, forbidden("You are not enrolled in this course")
	}

	key := pairKey(userID, lessonID)
	p, ok := c.progress[key]
	if !ok {
		p = &core.Progress{
			ID:           uuid.NewString(),
			UserID:       userID,
			LessonID:     lessonID,
			EnrollmentID: e.ID,
		}
		c.progress[key] = p
	}
	p.Completed = completed
	p.CompletedAt = nil
	if completed {
		now := c.now()
		p.CompletedAt = &now
	}

	done, total := c.completionLocked(userID, l.CourseID)
	courseCompleted := total > 0 && done == total
	if courseCompleted {
		c.issueCertificateLocked(userID, l.CourseID)
	}
	return *p, courseCompleted, nil
}

func (c *Catalog) completionLocked(userID, courseID string) (done, total int) {
	for _, l := range c.lessons {
		if l.CourseID != courseID {
			continue
		}
		total++
		if p, ok := c.progress[pairKey(userID, l.ID)]; ok && p.Completed {
			done++
		}
	}
	return done, total
}

func (c *Catalog) issueCertificateLocked(userID, courseID string) {
	key := pairKey(userID, courseID)
	if _, ok := c.certificates[key]; ok {
		return
	}
	c.certificates[key] = &core.Certificate{
		ID:       uuid.NewString(),
		UserID:   userID,
		CourseID: courseID,
		IssuedAt: c.now(),
	}
}

// Progress summarises every enrolled course of the user
func (c *Catalog) Progress(userID string) []core.CourseProgress {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []core.CourseProgress{}
	for _, e := range c.enrollments {
		if e.UserID != userID {
			continue
		}
		course, ok := c.courses[e.CourseID]
		if !ok {
			continue
		}

		cp := core.CourseProgress{
			ID:         e.ID,
			UserID:     userID,
			CourseID:   course.ID,
			EnrolledAt: e.EnrolledAt,
		}
		cp.Course = core.CourseSummary{ID: course.ID, Title: course.Title, ThumbnailURL: course.ThumbnailURL}

		for _, l := range c.lessonsLocked(course.ID) {
			if p, ok := c.progress[pairKey(userID, l.ID)]; ok {
				cp.Progress = append(cp.Progress, core.LessonProgress{
					LessonID:    l.ID,
					Completed:   p.Completed,
					CompletedAt: p.CompletedAt,
				})
			}
		}
		cp.CompletedLessons, cp.TotalLessons = c.completionLocked(userID, course.ID)
		cp.ProgressPercentage = core.CalculateProgress(cp.CompletedLessons, cp.TotalLessons)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out
}

func (c *Catalog) Certificates(userID string) []core.Certificate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []core.Certificate{}
	for _, cert := range c.certificates {
		if cert.UserID != userID {
			continue
		}
		item := *cert
		if course, ok := c.courses[cert.CourseID]; ok {
			item.Course = &core.CourseSummary{ID: course.ID, Title: course.Title, ThumbnailURL: course.ThumbnailURL}
			if ins := c.instructorLocked(course.InstructorID); ins != nil {
				item.Course.Instructor = &core.InstructorSummary{DisplayName: ins.DisplayName, WalletAddress: ins.WalletAddress}
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out
}

// CreateVideo reserves an asset for an upload into courseID (and lessonID when set)
func (c *Catalog) CreateVideo(courseID, lessonID, userID string) (core.Video, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.ownedCourseLocked(courseID, userID); err != nil {
		return core.Video{}, err
	}
	if lessonID != "" {
		if l, ok := c.lessons[lessonID]; !ok || l.CourseID != courseID {
			return core.Video{}, notFound("Lesson")
		}
	}

	rec := &videoRecord{
		video:    core.Video{ID: strings.ReplaceAll(uuid.NewString(), "-", ""), Status: "pendingupload"},
		courseID: courseID,
		lessonID: lessonID,
		ownerID:  userID,
	}
	c.videos[rec.video.ID] = rec
	return rec.video, nil
}

// CompleteUpload marks the asset ready and attaches it to its lesson.
// A destination accepts exactly one upload.
func (c *Catalog) CompleteUpload(videoID string, size int64, duration *float64) (core.Video, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.videos[videoID]
	if !ok {
		return core.Video{}, notFound("Video")
	}
	if rec.uploaded {
		return core.Video{}, conflict("Upload URL already used")
	}
	rec.uploaded = true
	rec.video.Status = "ready"
	rec.video.Size = &size
	rec.video.Duration = duration

	if l, ok := c.lessons[rec.lessonID]; ok {
		l.VideoURL = videoID
		if duration != nil && l.DurationMinutes == nil {
			minutes := *duration / 60
			l.DurationMinutes = &minutes
		}
	}
	return rec.video, nil
}

// Video returns the asset to its owner or to anyone with access to its course
func (c *Catalog) Video(videoID, userID string) (core.Video, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.videos[videoID]
	if !ok {
		return core.Video{}, notFound("Video")
	}
	course, ok := c.courses[rec.courseID]
	if rec.ownerID != userID && (!ok || !c.hasAccessLocked(course, userID)) {
		return core.Video{}, forbidden("You do not have access to this video")
	}
	return rec.video, nil
}

func (c *Catalog) DeleteVideo(videoID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.videos[videoID]
	if !ok {
		return notFound("Video")
	}
	if rec.ownerID != userID {
		return forbidden("You do not own this video")
	}
	delete(c.videos, videoID)
	for _, l := range c.lessons {
		if l.VideoURL == videoID {
			l.VideoURL = ""
		}
	}
	return nil
}
