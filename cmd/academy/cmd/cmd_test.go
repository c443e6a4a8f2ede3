package cmd

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xacademy/academy/adapters/store"
	"github.com/0xacademy/academy/adapters/tokenizer"
	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/internal/mp4test"
	devhttp "github.com/0xacademy/academy/transport/http"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String() + errOut.String(), err
}

// devEnv points the CLI at a fresh dev backend with the hardhat key
func devEnv(t *testing.T) {
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

	t.Setenv("ACADEMY_API_URL", ts.URL)
	t.Setenv("ACADEMY_PRIVATE_KEY", "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	t.Setenv("ACADEMY_TOKEN_CACHE", "bbolt")
	t.Setenv("ACADEMY_STATE_PATH", filepath.Join(t.TempDir(), "state.db"))
	t.Setenv("ACADEMY_LOG_LEVEL", "error")
}

func TestLoginWhoamiLogout(t *testing.T) {
	devEnv(t)

	_, err := run(t, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)

	out, err := run(t, "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully signed in")
	assert.Contains(t, out, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Role: student")
	assert.Contains(t, out, "Session expires")

	out, err = run(t, "courses", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "(0 courses)")

	out, err = run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully signed out")

	_, err = run(t, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestInstructorCommands(t *testing.T) {
	devEnv(t)
	video := filepath.Join(t.TempDir(), "intro.mp4")
	require.NoError(t, os.WriteFile(video, mp4test.Minimal(1000, 125400), 0o600))

	_, err := run(t, "login")
	require.NoError(t, err)

	_, err = run(t, "courses", "create", "--title", "Solidity 101", "--description", "Learn smart contracts")
	assert.Error(t, err, "students cannot create courses")

	_, err = run(t, "profile", "become-instructor")
	require.NoError(t, err)

	out, err := run(t, "courses", "create", "--title", "Solidity 101", "--description", "Learn smart contracts", "--price", "49.9", "--level", "beginner")
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 3)
	courseID := fields[2]

	out, err = run(t, "lessons", "create", courseID, "--title", "Hello contract", "--video", video)
	require.NoError(t, err)
	assert.Contains(t, out, "Created lesson")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "2:05")

	out, err = run(t, "lessons", "list", courseID)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello contract")
	assert.Contains(t, out, "true", "video attached")

	out, err = run(t, "courses", "update", courseID, "--title", "Solidity 102")
	require.NoError(t, err)
	assert.Contains(t, out, "Solidity 102")

	out, err = run(t, "courses", "publish", courseID)
	require.NoError(t, err)
	assert.Contains(t, out, "is published")

	out, err = run(t, "courses", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Solidity 102")
	assert.Contains(t, out, "$49.90")
}

func TestPriceAndInstructor(t *testing.T) {
	p := decimal.RequireFromString("1499")
	assert.Equal(t, "$1,499.00", price(&core.Course{PriceUSD: &p}))
	assert.Equal(t, "Free", price(&core.Course{}))

	assert.Equal(t, "", instructorName(nil))
	assert.Equal(t, "Vitalik", instructorName(&core.Instructor{DisplayName: "Vitalik"}))
	assert.Equal(t, "0xf39F...2266", instructorName(&core.Instructor{WalletAddress: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"}))
}

func TestPrintLessonsSanitizesContent(t *testing.T) {
	minutes := 2.5
	lessons := []core.Lesson{
		{ID: "l1", Order: 1, Title: "Intro", DurationMinutes: &minutes, IsFree: true, Content: `<p>Hello <b>world</b></p><script>alert(1)</script>`},
		{ID: "l2", Order: 2, Title: "Storage", VideoURL: "abc"},
	}

	showContent = true
	t.Cleanup(func() { showContent = false })

	var out bytes.Buffer
	require.NoError(t, printLessons(&out, lessons))

	s := out.String()
	assert.Contains(t, s, "2:30")
	assert.Contains(t, s, "Hello world")
	assert.NotContains(t, s, "alert")
	assert.NotContains(t, s, "<p>")
}
