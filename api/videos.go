package api

import (
	"context"

	"github.com/0xacademy/academy/core"
)

type uploadURLRequest struct {
	CourseID string `json:"courseId"`
	LessonID string `json:"lessonId,omitempty"`
}

// UploadURL requests a one-time video host destination for a course and optional lesson
func (c *Client) UploadURL(ctx context.Context, courseID, lessonID string) (*core.UploadTarget, error) {
	var resp core.UploadTarget
	if err := c.post(ctx, "/videos/upload-url", uploadURLRequest{CourseID: courseID, LessonID: lessonID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Video(ctx context.Context, id string) (*core.Video, error) {
	var resp struct {
		Video *core.Video `json:"video"`
	}
	if err := c.get(ctx, "/videos/"+segment(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Video, nil
}

func (c *Client) DeleteVideo(ctx context.Context, id string) (bool, error) {
	var resp successEnvelope
	if err := c.delete(ctx, "/videos/"+segment(id), &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}
