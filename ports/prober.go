package ports

import (
	"context"
	"io"
)

// DurationProber extracts the playback duration of a media stream in seconds
type DurationProber interface {
	ProbeDuration(ctx context.Context, r io.ReadSeeker) (float64, error)
}
