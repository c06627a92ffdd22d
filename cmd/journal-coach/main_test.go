package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"
	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/journal-coach/journal"
	"github.com/theimaginaryfoundation/journal-coach/journal/backend"
	"github.com/theimaginaryfoundation/journal-coach/journal/config"
	"github.com/theimaginaryfoundation/journal-coach/journal/provider"
)

type stubCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []provider.CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req provider.CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	return s.reply, s.err
}

type stubAuth struct{}

func (stubAuth) HealthCheck() (*types.HealthCheckResponse, error) {
	return &types.HealthCheckResponse{Name: "GoTrue"}, nil
}

func (stubAuth) GetUser() (*types.UserResponse, error) {
	return nil, errors.New("not signed in")
}

func newTestApp(c provider.Completer) *app {
	logger := zap.NewNop()
	return &app{
		cfg:      defaultConfig(),
		logger:   logger,
		settings: &config.Config{HTTPAddr: ":0"},
		gateway:  journal.NewGateway(c, journal.WithLogger(logger)),
		probe:    backend.NewProbe(stubAuth{}, "", logger),
	}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Config{}.Validate())
	require.NoError(t, Config{OutPath: "result.JSON"}.Validate())
	require.Error(t, Config{OutPath: "result.txt"}.Validate())
}

func TestLoadEntries_YAMLList(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- title: Monday\n  content: slept badly\n- title: Tuesday\n  content: better\n"), 0o644))

	got, err := loadEntries(path)
	require.NoError(t, err)
	assert.Equal(t, []journal.Entry{
		{Title: "Monday", Content: "slept badly"},
		{Title: "Tuesday", Content: "better"},
	}, got)
}

func TestLoadEntries_JSONObject(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entries":[{"title":"a","content":"b"}]}`), 0o644))

	got, err := loadEntries(path)
	require.NoError(t, err)
	assert.Equal(t, []journal.Entry{{Title: "a", Content: "b"}}, got)
}

func TestLoadEntries_Empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries: []\n"), 0o644))

	_, err := loadEntries(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entries")
}

func TestReadText(t *testing.T) {
	t.Parallel()

	got, err := readText(strings.NewReader("from stdin"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readText(strings.NewReader("ignored"), "", []string{"hello", "world"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	path := filepath.Join(t.TempDir(), "raw.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	got, err = readText(nil, path, []string{"ignored"})
	require.NoError(t, err)
	assert.Equal(t, "from file", got)
}

func TestIsTerminal_NonInteractiveInputs(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("piped journal")
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)

	assert.False(t, isTerminal(strings.NewReader("x")))
	assert.False(t, isTerminal(nil))
	assert.False(t, isTerminal(f))

	got, err := readText(f, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "piped journal", got)
}

func TestSyncLogger_NilSafe(t *testing.T) {
	t.Parallel()

	(&app{}).syncLogger()
	(&app{logger: zap.NewNop()}).syncLogger()
}

func TestOrganize_PrintsEnvelopeAndWritesOut(t *testing.T) {
	t.Parallel()

	c := &stubCompleter{reply: `{"organized_text":"Tidy.","word_count":1,"detected_emotions":["calm"],"key_events":[]}`}
	a := newTestApp(c)
	outPath := filepath.Join(t.TempDir(), "organized.json")

	stdout, err := run(t, a, "organize", "--out", outPath, "messy", "text")
	require.NoError(t, err)

	var env journal.Result[journal.OrganizedJournal]
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	require.True(t, env.Success)
	assert.Equal(t, "Tidy.", env.Data.OrganizedText)

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.JSONEq(t, stdout, string(b))

	require.Len(t, c.calls, 1)
	assert.Contains(t, c.calls[0].Prompt, "messy text")
}

func TestAnalyze_FailureReturnsOperationFailed(t *testing.T) {
	t.Parallel()

	c := &stubCompleter{err: errors.New("boom")}
	a := newTestApp(c)
	path := filepath.Join(t.TempDir(), "entries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- title: t\n  content: c\n"), 0o644))

	stdout, err := run(t, a, "analyze", "-f", path)
	require.ErrorIs(t, err, errOperationFailed)

	var env journal.Result[journal.StageAnalysis]
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Equal(t, "stage analysis error: boom", env.Message)
}

func TestAnalyze_RequiresFile(t *testing.T) {
	t.Parallel()

	_, err := run(t, newTestApp(&stubCompleter{}), "analyze")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errOperationFailed)
}

func TestRecommend_RequiresStage(t *testing.T) {
	t.Parallel()

	c := &stubCompleter{}
	_, err := run(t, newTestApp(c), "recommend")
	require.Error(t, err)
	assert.Empty(t, c.calls)
}

func TestRecommend_InvalidStageFailsWithoutCall(t *testing.T) {
	t.Parallel()

	c := &stubCompleter{}
	stdout, err := run(t, newTestApp(c), "recommend", "--stage", "7")
	require.ErrorIs(t, err, errOperationFailed)
	assert.Contains(t, stdout, `"success":false`)
	assert.Empty(t, c.calls)
}

func TestPing_PrettyOutput(t *testing.T) {
	t.Parallel()

	c := &stubCompleter{reply: "hello"}
	stdout, err := run(t, newTestApp(c), "--pretty", "ping")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\n  \"success\": true")
	assert.Contains(t, stdout, `"message": "hello"`)
}

func TestProbe_SignedOut(t *testing.T) {
	t.Parallel()

	stdout, err := run(t, newTestApp(&stubCompleter{}), "probe")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"connection successful","session":null}`, stdout)
}

func TestRejectsNonJSONOut(t *testing.T) {
	t.Parallel()

	c := &stubCompleter{reply: "hello"}
	_, err := run(t, newTestApp(c), "--out", "result.txt", "ping")
	require.Error(t, err)
	assert.Empty(t, c.calls)
}
