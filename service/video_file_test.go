package service

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xacademy/academy/adapters/notify"
	"github.com/0xacademy/academy/core"
)

// ftyp box with the isom brand, enough for content sniffing
var mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2")

func TestNewVideoFileSniffsContentType(t *testing.T) {
	f := NewVideoFile("clip", "", mp4Header)
	assert.Equal(t, "video/mp4", f.ContentType)
	assert.Equal(t, int64(len(mp4Header)), f.Size)

	r, err := f.Open()
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, mp4Header, got)
}

func TestOpenVideoFile(t *testing.T) {
	dir := t.TempDir()

	video := filepath.Join(dir, "lesson.mp4")
	require.NoError(t, os.WriteFile(video, mp4Header, 0o600))
	f, err := OpenVideoFile(video)
	require.NoError(t, err)
	assert.Equal(t, "lesson.mp4", f.Name)
	assert.Equal(t, "video/mp4", f.ContentType)

	// The extension does not decide the type
	notes := filepath.Join(dir, "notes.mp4")
	require.NoError(t, os.WriteFile(notes, []byte("just some text"), 0o600))
	f, err = OpenVideoFile(notes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.ContentType, "text/plain"))

	u := NewUploader(&fakeUploadAPI{}, notify.NewRecorder(), "c1", "")
	assert.ErrorIs(t, u.Select(f), core.ErrInvalidFileType)
	assert.False(t, u.HasFile())

	_, err = OpenVideoFile(dir)
	assert.Error(t, err)
	_, err = OpenVideoFile(filepath.Join(dir, "missing.mp4"))
	assert.Error(t, err)
}

func TestOpenWithoutContent(t *testing.T) {
	f := &VideoFile{Name: "a.mp4", Size: 10, ContentType: "video/mp4"}

	r, err := f.Open()
	assert.Nil(t, r)
	assert.ErrorIs(t, err, core.ErrNoFile)
}
