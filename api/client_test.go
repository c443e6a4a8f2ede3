package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xacademy/academy/adapters/notify"
	"github.com/0xacademy/academy/adapters/store"
	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.Store, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := session.New(store.NewMemoryTokenCache(), nil)
	require.NoError(t, sess.Restore(context.Background()))
	rec := notify.NewRecorder()

	return NewClient(srv.URL, sess, WithNotifier(rec), WithHTTPClient(srv.Client())), sess, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBearerAndRequestID(t *testing.T) {
	var gotAuth, gotID string
	c, sess, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get(HeaderRequestID)
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"id": "u1"}})
	})

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.NotEmpty(t, gotID)

	sess.Establish(context.Background(), "tok_1", &core.User{ID: "u1"})
	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok_1", gotAuth)
	assert.Equal(t, "u1", user.ID)
}

func TestUnauthorizedExpiresSessionOnce(t *testing.T) {
	c, sess, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized", "statusCode": 401})
	})
	sess.Establish(context.Background(), "tok_1", &core.User{ID: "u1"})

	var wg sync.WaitGroup
	var unauthorized atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Enrolled(context.Background())
			if StatusOf(err) == http.StatusUnauthorized {
				unauthorized.Add(1)
			}
			assert.ErrorIs(t, err, core.ErrNotAuthenticated)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), unauthorized.Load())
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, 1, rec.Count(notify.LevelError))
	assert.Equal(t, NoticeSessionExpired, rec.Notices()[0].Message)
}

func TestHandshakeCallsLeaveSessionAlone(t *testing.T) {
	var mu sync.Mutex
	var auths []string
	c, sess, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		switch r.URL.Path {
		case "/auth/nonce":
			writeJSON(w, http.StatusOK, map[string]string{"nonce": "n1"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid or expired nonce"})
		}
	})
	ctx := context.Background()
	sess.Establish(ctx, "tok_1", &core.User{ID: "u1"})

	nonce, err := c.Nonce(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "n1", nonce)

	_, err = c.Verify(Quiet(ctx), "msg", "0x00")
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))

	assert.Equal(t, []string{"", ""}, auths)
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "tok_1", sess.Token())
	assert.Empty(t, rec.Notices())
}

func TestErrorMessageSurfacedVerbatim(t *testing.T) {
	c, _, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "Conflict",
			"message":    "Already enrolled in this course",
			"statusCode": 409,
		})
	})

	_, err := c.Enroll(context.Background(), "c1")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Conflict", apiErr.Code)
	assert.Equal(t, "Already enrolled in this course", apiErr.Message)
	assert.Equal(t, []notify.Notice{{Level: notify.LevelError, Message: "Already enrolled in this course"}}, rec.Notices())
}

func TestErrorWithoutMessageUsesGenericNotice(t *testing.T) {
	c, _, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Teaching(context.Background())
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, []notify.Notice{{Level: notify.LevelError, Message: NoticeGenericError}}, rec.Notices())
}

func TestQuietSuppressesNotices(t *testing.T) {
	c, _, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid nonce"})
	})

	_, err := c.Verify(Quiet(context.Background()), "msg", "0x00")
	require.Error(t, err)
	assert.Empty(t, rec.Notices())
}

func TestValidationNeverReachesNetwork(t *testing.T) {
	var calls atomic.Int32
	c, _, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	_, err := c.CreateCourse(context.Background(), &core.CourseInput{Title: "Go", Description: "short"})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = c.PublicProfile(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, core.ErrInvalidAddress)

	assert.Zero(t, calls.Load())
	assert.Empty(t, rec.Notices())
}

func TestListCoursesQuery(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "solidity", r.URL.Query().Get("search"))
		assert.False(t, r.URL.Query().Has("category"))
		writeJSON(w, http.StatusOK, map[string]any{
			"courses":    []map[string]any{{"id": "c1", "title": "Solidity 101", "price_usd": "19.99"}},
			"pagination": map[string]int{"page": 2, "limit": 10, "total": 11, "pages": 2},
		})
	})

	list, err := c.ListCourses(context.Background(), ListCoursesParams{Page: 2, Search: "solidity"})
	require.NoError(t, err)
	require.Len(t, list.Courses, 1)
	assert.Equal(t, "19.99", list.Courses[0].PriceUSD.String())
	assert.Equal(t, 2, list.Pagination.Pages)
}

func TestUploadURLOmitsEmptyLesson(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"courseId": "c1"}, body)
		writeJSON(w, http.StatusOK, map[string]string{"uploadURL": "https://upload.example/abc", "videoId": "vid_1"})
	})

	target, err := c.UploadURL(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.Equal(t, "vid_1", target.VideoID)
	assert.Equal(t, "https://upload.example/abc", target.UploadURL)
}

func TestUpdateProfileRefreshesSessionUser(t *testing.T) {
	c, sess, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"id": "u1", "display_name": "Ada"}})
	})
	sess.Establish(context.Background(), "tok_1", &core.User{ID: "u1"})

	name := "Ada"
	_, err := c.UpdateProfile(context.Background(), &core.ProfileUpdate{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada", sess.User().DisplayName)
}
