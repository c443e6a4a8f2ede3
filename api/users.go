package api

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xacademy/academy/core"
)

type userEnvelope struct {
	User *core.User `json:"user"`
}

func (c *Client) Profile(ctx context.Context) (*core.User, error) {
	var resp userEnvelope
	if err := c.get(ctx, "/user/profile", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UpdateProfile validates and applies a partial profile change.
// The session user is refreshed with the result.
func (c *Client) UpdateProfile(ctx context.Context, in *core.ProfileUpdate) (*core.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var resp userEnvelope
	if err := c.patch(ctx, "/user/profile", in, &resp); err != nil {
		return nil, err
	}
	if resp.User != nil && c.session != nil {
		c.session.SetUser(resp.User)
	}
	return resp.User, nil
}

// Teaching lists the courses the caller authored
func (c *Client) Teaching(ctx context.Context) ([]core.Course, error) {
	var resp struct {
		Courses []core.Course `json:"courses"`
	}
	if err := c.get(ctx, "/user/teaching", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Courses, nil
}

func (c *Client) Progress(ctx context.Context) ([]core.CourseProgress, error) {
	var resp struct {
		Progress []core.CourseProgress `json:"progress"`
	}
	if err := c.get(ctx, "/user/progress", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Progress, nil
}

// MarkLessonComplete records (or clears) completion of one lesson
func (c *Client) MarkLessonComplete(ctx context.Context, lessonID string, completed bool) (*LessonCompletion, error) {
	var resp LessonCompletion
	body := map[string]bool{"completed": completed}
	if err := c.post(ctx, "/user/progress/lesson/"+segment(lessonID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Certificates(ctx context.Context) ([]core.Certificate, error) {
	var resp struct {
		Certificates []core.Certificate `json:"certificates"`
	}
	if err := c.get(ctx, "/user/certificates", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Certificates, nil
}

// PublicProfile looks up another user by wallet address
func (c *Client) PublicProfile(ctx context.Context, address string) (*core.User, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidAddress, address)
	}
	var resp userEnvelope
	if err := c.get(ctx, "/user/"+address, nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// BecomeInstructor upgrades the caller's role and returns the backend message
func (c *Client) BecomeInstructor(ctx context.Context) (*core.User, string, error) {
	var resp struct {
		User    *core.User `json:"user"`
		Message string     `json:"message"`
	}
	if err := c.post(ctx, "/user/become-instructor", nil, &resp); err != nil {
		return nil, "", err
	}
	if resp.User != nil && c.session != nil {
		c.session.SetUser(resp.User)
	}
	return resp.User, resp.Message, nil
}
