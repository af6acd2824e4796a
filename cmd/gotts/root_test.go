package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manusawe00z/go-bot/pkg/config"
)

var fakeMP3 = []byte{0xFF, 0xFB, 0x90, 0x64, 0x00, 0x01, 0x02}

// fakeGoogle serves translate_tts, answering unknown languages with 404.
func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("tl") {
		case "en", "th":
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write(fakeMP3)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func setupEnv(t *testing.T) string {
	t.Helper()
	ts := fakeGoogle(t)
	t.Setenv("GOTTS_GOOGLE_BASE_URL", ts.URL)
	t.Setenv("GOTTS_TEMP_DIR", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...)
	code := runWith(args, &stdout, &stderr)
	return code, stderr.String()
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{})

	require.NotNil(t, cmd)
	assert.Equal(t, "gotts <text> [language] [output_file]", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	uses := []string{}
	for _, sub := range cmd.Commands() {
		uses = append(uses, sub.Use)
	}
	assert.Contains(t, uses, "serve")
	assert.Contains(t, uses, "version")

	for _, name := range []string{"backend", "temp-dir", "slow", "debug"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("env-file"))
}

func TestRun_PublishesToNestedPath(t *testing.T) {
	dir := setupEnv(t)
	dest := filepath.Join(dir, "out", "greet.mp3")

	code, logs := execute(t, "hello", "en", dest)

	require.Equal(t, 0, code, logs)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, fakeMP3, data)
	assert.Contains(t, logs, "Audio saved")
}

func TestRun_Defaults(t *testing.T) {
	dir := setupEnv(t)

	code, logs := execute(t, "hello")

	require.Equal(t, 0, code, logs)
	assert.FileExists(t, filepath.Join(dir, "tts.mp3"))
	assert.Contains(t, logs, "lang=en")
}

func TestRun_MissingText(t *testing.T) {
	dir := setupEnv(t)

	code, logs := execute(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, logs, "Usage: gotts <text> [language] [output_file]")

	code, _ = execute(t, "", "en", "x.mp3")
	assert.Equal(t, 1, code)
	assert.NoFileExists(t, filepath.Join(dir, "x.mp3"))
}

func TestRun_MissingTextReportedBeforeConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("GOTTS_LOG_LEVEL", "loud")

	code, logs := execute(t)

	assert.Equal(t, 1, code)
	assert.Contains(t, logs, "Usage: gotts <text> [language] [output_file]")
	assert.NotContains(t, logs, "loud")
}

func TestRun_EnvFileFlag(t *testing.T) {
	dir := setupEnv(t)
	envFile := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(envFile, []byte("GOTTS_LANGUAGE=th\nGOTTS_OUTPUT=from-env.mp3\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("GOTTS_LANGUAGE")
		os.Unsetenv("GOTTS_OUTPUT")
	})

	var stdout, stderr bytes.Buffer
	code := runWith([]string{"--env-file", envFile, "hello"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "lang=th")
	assert.FileExists(t, filepath.Join(dir, "from-env.mp3"))
}

func TestRun_InvalidLanguageKeepsExistingFile(t *testing.T) {
	dir := setupEnv(t)
	dest := filepath.Join(dir, "keep.mp3")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	code, logs := execute(t, "hello", "zz", dest)

	assert.Equal(t, 1, code)
	assert.Contains(t, logs, "[ERROR] publish:")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestRun_TooManyArgs(t *testing.T) {
	setupEnv(t)

	code, logs := execute(t, "a", "b", "c", "d")
	assert.Equal(t, 1, code)
	assert.Contains(t, logs, "Error:")
}

func TestRun_UnknownBackendFlag(t *testing.T) {
	setupEnv(t)

	code, logs := execute(t, "--backend", "festival", "hello")
	assert.Equal(t, 1, code)
	assert.Contains(t, logs, "festival")
}

func TestParseArgs(t *testing.T) {
	cfg := config.DefaultConfig()

	_, ok := parseArgs(cfg, nil)
	assert.False(t, ok)

	req, ok := parseArgs(cfg, []string{"hi"})
	require.True(t, ok)
	assert.Equal(t, "en", req.Language)
	assert.Equal(t, "tts.mp3", req.Destination)

	req, ok = parseArgs(cfg, []string{"hi", "th", "a/b.mp3"})
	require.True(t, ok)
	assert.Equal(t, "th", req.Language)
	assert.Equal(t, "a/b.mp3", req.Destination)
}

func TestApplyOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	applyOptions(cfg, speakOptions{backend: "kokoro", tempDir: "/stage", slow: true})

	assert.Equal(t, "kokoro", cfg.Voice.Backend)
	assert.Equal(t, "/stage", cfg.TempDir)
	assert.True(t, cfg.Voice.Google.Slow)
}
