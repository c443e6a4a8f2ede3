package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/internal/security"
)

// CourseHandlers serves courses, lessons and enrollment
type CourseHandlers struct {
	catalog *Catalog
}

// bindValid decodes the JSON body into in and runs its form rules
func bindValid(c *gin.Context, in interface{ Validate() error }) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := in.Validate(); err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			abort(c, http.StatusBadRequest, verr.Error())
			return false
		}
		abort(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *CourseHandlers) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	courses, pagination := h.catalog.ListCourses(page, limit, c.Query("search"), c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"courses": courses, "pagination": pagination})
}

func (h *CourseHandlers) Get(c *gin.Context) {
	course, full, err := h.catalog.Course(c.Param("id"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course, "hasFullAccess": full})
}

func (h *CourseHandlers) Create(c *gin.Context) {
	var in core.CourseInput
	if !bindValid(c, &in) {
		return
	}
	in.Title = security.SanitizeText(in.Title)

	course, err := h.catalog.CreateCourse(userID(c), &in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

func (h *CourseHandlers) Update(c *gin.Context) {
	var in core.CourseUpdate
	if !bindValid(c, &in) {
		return
	}
	if in.Title != nil {
		title := security.SanitizeText(*in.Title)
		in.Title = &title
	}

	course, err := h.catalog.UpdateCourse(c.Param("id"), userID(c), &in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (h *CourseHandlers) Delete(c *gin.Context) {
	if err := h.catalog.DeleteCourse(c.Param("id"), userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CourseHandlers) Publish(c *gin.Context) {
	req := struct {
		Publish *bool `json:"publish"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	publish := true
	if req.Publish != nil {
		publish = *req.Publish
	}

	course, err := h.catalog.PublishCourse(c.Param("id"), userID(c), publish)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (h *CourseHandlers) Enroll(c *gin.Context) {
	enrollment, err := h.catalog.Enroll(c.Param("id"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"enrollment": enrollment})
}

func (h *CourseHandlers) Enrolled(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enrollments": h.catalog.Enrolled(userID(c))})
}

func (h *CourseHandlers) Lessons(c *gin.Context) {
	lessons, err := h.catalog.Lessons(c.Param("id"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

func (h *CourseHandlers) CreateLesson(c *gin.Context) {
	var in core.LessonInput
	if !bindValid(c, &in) {
		return
	}
	in.Content = security.SanitizeHTML(in.Content)

	lesson, err := h.catalog.CreateLesson(c.Param("id"), userID(c), &in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lesson": lesson})
}

func (h *CourseHandlers) UpdateLesson(c *gin.Context) {
	var in core.LessonUpdate
	if !bindValid(c, &in) {
		return
	}
	if in.Content != nil {
		content := security.SanitizeHTML(*in.Content)
		in.Content = &content
	}

	lesson, err := h.catalog.UpdateLesson(c.Param("id"), c.Param("lessonId"), userID(c), &in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": lesson})
}

func (h *CourseHandlers) DeleteLesson(c *gin.Context) {
	if err := h.catalog.DeleteLesson(c.Param("id"), c.Param("lessonId"), userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
