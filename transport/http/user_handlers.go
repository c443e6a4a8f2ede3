package http

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/0xacademy/academy/core"
)

// UserHandlers serves profiles, progress and certificates
type UserHandlers struct {
	catalog *Catalog
}

func (h *UserHandlers) Profile(c *gin.Context) {
	user, err := h.catalog.User(userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandlers) UpdateProfile(c *gin.Context) {
	var in core.ProfileUpdate
	if !bindValid(c, &in) {
		return
	}

	user, err := h.catalog.UpdateProfile(userID(c), &in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandlers) Teaching(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"courses": h.catalog.Teaching(userID(c))})
}

func (h *UserHandlers) Progress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"progress": h.catalog.Progress(userID(c))})
}

func (h *UserHandlers) MarkLesson(c *gin.Context) {
	req := struct {
		Completed *bool `json:"completed"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	progress, courseCompleted, err := h.catalog.MarkLesson(c.Param("lessonId"), userID(c), completed)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress, "courseCompleted": courseCompleted})
}

func (h *UserHandlers) Certificates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"certificates": h.catalog.Certificates(userID(c))})
}

func (h *UserHandlers) BecomeInstructor(c *gin.Context) {
	user, err := h.catalog.BecomeInstructor(userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "message": "You are now an instructor!"})
}

func (h *UserHandlers) Public(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		abort(c, http.StatusBadRequest, "Invalid Ethereum address")
		return
	}

	user, err := h.catalog.PublicUser(address)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
