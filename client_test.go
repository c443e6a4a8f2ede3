package academy

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xacademy/academy/adapters/notify"
	"github.com/0xacademy/academy/adapters/store"
	"github.com/0xacademy/academy/adapters/tokenizer"
	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/internal/config"
	"github.com/0xacademy/academy/internal/mp4test"
	"github.com/0xacademy/academy/ports"
	"github.com/0xacademy/academy/service"
	devhttp "github.com/0xacademy/academy/transport/http"
)

const hardhatKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func devBackend(t *testing.T) *httptest.Server {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	srv := devhttp.NewServer(devhttp.DefaultConfig(), devhttp.Deps{
		Nonces:    store.NewMemoryNonceStore(),
		Tokenizer: tokenizer.NewJWTTokenizer(key),
	})
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func loadConfig(t *testing.T, vars map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(vars)
	require.NoError(t, err)
	return cfg
}

func TestLoginPersistsAcrossClients(t *testing.T) {
	ts := devBackend(t)
	ctx := context.Background()
	statePath := filepath.Join(t.TempDir(), "state.db")

	cfg := loadConfig(t, map[string]string{
		"ACADEMY_API_URL":     ts.URL,
		"ACADEMY_PRIVATE_KEY": hardhatKey,
		"ACADEMY_STATE_PATH":  statePath,
	})

	rec := notify.NewRecorder()
	first, err := New(ctx, cfg, WithNotifier(rec))
	require.NoError(t, err)

	ok, err := first.Start(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = first.Login(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, rec.Count(notify.LevelSuccess))
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", first.Session().User().WalletAddress)
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, WithNotifier(notify.NewRecorder()))
	require.NoError(t, err)
	defer second.Close()

	ok, err = second.Start(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, core.SessionAuthenticated, second.Session().Snapshot().State)

	require.NoError(t, second.Logout(ctx))
	assert.False(t, second.Session().IsAuthenticated())
}

func TestLoginWithoutWallet(t *testing.T) {
	ts := devBackend(t)
	ctx := context.Background()

	c, err := New(ctx, loadConfig(t, map[string]string{
		"ACADEMY_API_URL":     ts.URL,
		"ACADEMY_TOKEN_CACHE": config.CacheMemory,
	}), WithNotifier(notify.NewRecorder()))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Login(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = c.Start(ctx)
	require.NoError(t, err)

	_, err = c.Login(ctx)
	assert.ErrorIs(t, err, ErrNoWallet)
	assert.Nil(t, c.Wallet())
}

func TestRejectedTokenIsDropped(t *testing.T) {
	ts := devBackend(t)
	ctx := context.Background()

	cache := store.NewMemoryTokenCache()
	require.NoError(t, cache.Save(ctx, "not-a-jwt"))

	rec := notify.NewRecorder()
	c, err := New(ctx, loadConfig(t, map[string]string{
		"ACADEMY_API_URL":     ts.URL,
		"ACADEMY_TOKEN_CACHE": config.CacheMemory,
	}), WithTokenCache(cache), WithNotifier(rec))
	require.NoError(t, err)
	defer c.Close()

	ok, err := c.Start(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, core.SessionAnonymous, c.Session().Snapshot().State)

	_, err = cache.Load(ctx)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUploaderThroughFacade(t *testing.T) {
	ts := devBackend(t)
	ctx := context.Background()

	c, err := New(ctx, loadConfig(t, map[string]string{
		"ACADEMY_API_URL":     ts.URL,
		"ACADEMY_PRIVATE_KEY": hardhatKey,
		"ACADEMY_TOKEN_CACHE": config.CacheMemory,
	}), WithNotifier(notify.NewRecorder()))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Start(ctx)
	require.NoError(t, err)
	ok, err := c.Login(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = c.API().BecomeInstructor(ctx)
	require.NoError(t, err)
	course, err := c.API().CreateCourse(ctx, &core.CourseInput{Title: "Intro to EVM", Description: "Opcodes, gas and storage"})
	require.NoError(t, err)

	up := c.NewUploader(course.ID, "")
	require.NoError(t, up.Select(service.NewVideoFile("clip.mp4", "video/mp4", []byte("not really a movie"))))

	res, err := up.Start(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, res.VideoID)
	assert.Equal(t, float64(100), up.Progress())
}

func TestCreateAndUpdateLessonWithVideo(t *testing.T) {
	ts := devBackend(t)
	ctx := context.Background()

	c, err := New(ctx, loadConfig(t, map[string]string{
		"ACADEMY_API_URL":     ts.URL,
		"ACADEMY_PRIVATE_KEY": hardhatKey,
		"ACADEMY_TOKEN_CACHE": config.CacheMemory,
	}), WithNotifier(notify.NewRecorder()))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Start(ctx)
	require.NoError(t, err)
	ok, err := c.Login(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	_, _, err = c.API().BecomeInstructor(ctx)
	require.NoError(t, err)
	course, err := c.API().CreateCourse(ctx, &core.CourseInput{Title: "Intro to EVM", Description: "Opcodes, gas and storage"})
	require.NoError(t, err)

	var statuses []core.UploadStatus
	video := service.NewVideoFile("intro.mp4", "", mp4test.Minimal(1000, 125400))
	lesson, err := c.CreateLesson(ctx, course.ID, core.LessonInput{Title: "Opcodes"}, video,
		service.WithStatus(func(s core.UploadStatus) { statuses = append(statuses, s) }))
	require.NoError(t, err)
	assert.Equal(t, "Opcodes", lesson.Title)
	assert.True(t, lesson.HasVideo())
	require.NotNil(t, lesson.DurationMinutes)
	assert.InDelta(t, 2.09, *lesson.DurationMinutes, 0.001)
	assert.Contains(t, statuses, core.UploadSuccess)

	first := lesson.VideoURL
	title := "Opcodes and gas"
	lesson, err = c.UpdateLesson(ctx, course.ID, lesson.ID, core.LessonUpdate{Title: &title},
		service.NewVideoFile("intro2.mp4", "", mp4test.Minimal(600, 60000)))
	require.NoError(t, err)
	assert.Equal(t, title, lesson.Title)
	assert.NotEqual(t, first, lesson.VideoURL)
	require.NotNil(t, lesson.DurationMinutes)
	assert.InDelta(t, 100.0/60, *lesson.DurationMinutes, 0.001)

	free := true
	lesson, err = c.UpdateLesson(ctx, course.ID, lesson.ID, core.LessonUpdate{IsFree: &free}, nil)
	require.NoError(t, err)
	assert.True(t, lesson.IsFree)

	_, err = c.CreateLesson(ctx, course.ID, core.LessonInput{Title: "Storage"}, service.NewVideoFile("notes.txt", "", []byte("plain text")))
	assert.ErrorIs(t, err, core.ErrInvalidFileType)
	lessons, err := c.API().Lessons(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}
