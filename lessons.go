package academy

import (
	"context"
	"fmt"

	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/service"
)

// CreateLesson adds a lesson to courseID and uploads its video.
// The duration read from the file goes into the new lesson; once the host has
// the video, its id is stored as the lesson's video_url. When the upload fails
// the lesson is kept without a video and returned alongside the error.
func (c *Client) CreateLesson(ctx context.Context, courseID string, in core.LessonInput, video *service.VideoFile, opts ...service.UploadOption) (*core.Lesson, error) {
	up := c.NewUploader(courseID, "", opts...)
	if err := up.Select(video); err != nil {
		return nil, err
	}
	if minutes, ok := up.AwaitDuration(ctx); ok && in.DurationMinutes == nil {
		in.DurationMinutes = &minutes
	}

	lesson, err := c.api.CreateLesson(ctx, courseID, &in)
	if err != nil {
		return nil, err
	}
	log := c.logger.With("course_id", courseID, "lesson_id", lesson.ID)
	log.Info("lesson created")

	up.SetLessonID(lesson.ID)
	res, err := up.Start(ctx)
	if err != nil {
		return lesson, fmt.Errorf("upload video: %w", err)
	}

	return c.attachVideo(ctx, courseID, lesson.ID, res.VideoID, nil)
}

// UpdateLesson applies a partial update. With a video the file is uploaded
// first and the update also carries its id and duration.
func (c *Client) UpdateLesson(ctx context.Context, courseID, lessonID string, in core.LessonUpdate, video *service.VideoFile, opts ...service.UploadOption) (*core.Lesson, error) {
	if video == nil {
		return c.api.UpdateLesson(ctx, courseID, lessonID, &in)
	}

	up := c.NewUploader(courseID, lessonID, opts...)
	if err := up.Select(video); err != nil {
		return nil, err
	}
	if minutes, ok := up.AwaitDuration(ctx); ok && in.DurationMinutes == nil {
		in.DurationMinutes = &minutes
	}
	res, err := up.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	return c.attachVideo(ctx, courseID, lessonID, res.VideoID, &in)
}

func (c *Client) attachVideo(ctx context.Context, courseID, lessonID, videoID string, in *core.LessonUpdate) (*core.Lesson, error) {
	if in == nil {
		in = &core.LessonUpdate{}
	}
	in.VideoURL = &videoID
	lesson, err := c.api.UpdateLesson(ctx, courseID, lessonID, in)
	if err != nil {
		return nil, fmt.Errorf("attach video %s: %w", videoID, err)
	}
	return lesson, nil
}
