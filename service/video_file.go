package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/0xacademy/academy/core"
)

// VideoFile is a candidate upload: its metadata plus a way to read it
type VideoFile struct {
	Name        string
	Size        int64
	ContentType string

	open func() (io.ReadSeekCloser, error)
}

// Open returns a fresh reader positioned at the start of the file.
// Files not built by OpenVideoFile or NewVideoFile have no content.
func (f *VideoFile) Open() (io.ReadSeekCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("%w: %s has no content", core.ErrNoFile, f.Name)
	}
	return f.open()
}

// OpenVideoFile describes a file on disk, sniffing its content type from the leading bytes
func OpenVideoFile(path string) (*VideoFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat video file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}

	return &VideoFile{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: mtype.String(),
		open: func() (io.ReadSeekCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// NewVideoFile wraps in-memory content. An empty contentType is sniffed from data.
func NewVideoFile(name, contentType string, data []byte) *VideoFile {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return &VideoFile{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		open: func() (io.ReadSeekCloser, error) {
			return nopCloser{bytes.NewReader(data)}, nil
		},
	}
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
