// Package probe reads media metadata from video files.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/abema/go-mp4"
)

var ErrNoDuration = errors.New("media has no duration")

// MP4Prober reads the movie header of ISO-BMFF files (mp4, mov, m4v)
type MP4Prober struct{}

// NewMP4Prober creates a prober
func NewMP4Prober() *MP4Prober {
	return &MP4Prober{}
}

// ProbeDuration returns the movie duration in seconds
func (p *MP4Prober) ProbeDuration(ctx context.Context, r io.ReadSeeker) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := mp4.Probe(r)
	if err != nil {
		return 0, fmt.Errorf("probe mp4: %w", err)
	}
	if info.Timescale == 0 || info.Duration == 0 {
		return 0, ErrNoDuration
	}

	return float64(info.Duration) / float64(info.Timescale), nil
}
