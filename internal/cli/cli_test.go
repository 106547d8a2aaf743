package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type platform struct {
	mu      sync.Mutex
	bodies  map[string][]string
	headers map[string][]string
}

func (p *platform) sent(path string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.bodies[path]...)
}

func (p *platform) authorization(path string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.headers[path]) == 0 {
		return ""
	}
	return p.headers[path][0]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type harness struct {
	t        *testing.T
	platform *platform
	apiURL   string
	dataDir  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("HOME", tmp)

	p := &platform{bodies: map[string][]string{}, headers: map[string][]string{}}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		p.mu.Lock()
		p.bodies[r.URL.Path] = append(p.bodies[r.URL.Path], string(body))
		p.headers[r.URL.Path] = append(p.headers[r.URL.Path], r.Header.Get("Authorization"))
		p.mu.Unlock()

		switch r.URL.Path {
		case "/auth/login/":
			writeJSON(w, http.StatusOK, map[string]any{
				"name": "Ann Lee", "role": "Instructor", "access": "tok-a", "refresh": "tok-r",
			})
		case "/logout/":
			w.WriteHeader(http.StatusOK)
		case "/sql-problems/":
			writeJSON(w, http.StatusOK, []map[string]any{
				{"problem_id": 1, "title": "Select All", "topic": "Select", "difficulty_level": "Easy", "acceptance": 75.0},
			})
		case "/problems/1/attempt/":
			var req struct {
				UserQuery string `json:"user_query"`
			}
			_ = json.Unmarshal(body, &req)
			if req.UserQuery == "SELECT * FROM t;" {
				writeJSON(w, http.StatusOK, map[string]string{"result": "pass"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"result": "wrong", "feedback": "Output mismatch"})
		case "/instructor/query-sql/":
			writeJSON(w, http.StatusOK, map[string]any{"columns": []string{"n"}, "rows": [][]any{{3}}})
		case "/llm-analytics/generate/":
			writeJSON(w, http.StatusOK, map[string]string{"query": "```sql\nSELECT 1;\n```"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	return &harness{t: t, platform: p, apiURL: ts.URL, dataDir: filepath.Join(tmp, "data")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--api-url", h.apiURL, "--data-dir", h.dataDir, "--lang", "en"))
	err := root.Execute()
	return out.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	_, err := h.run("login", "--email", "ann@example.com", "--password", "password1")
	require.NoError(h.t, err)
}

func TestLoginValidationMakesNoRequest(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("login", "--email", "a@b.com", "--password", "short")
	require.Error(t, err)
	assert.Equal(t, "Password must be at least 8 characters!", err.Error())
	assert.Empty(t, h.platform.sent("/auth/login/"))
}

func TestSubmitRequiresLogin(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("submit", "--problem", "1", "--file", "nothing.sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
	assert.Empty(t, h.platform.sent("/problems/1/attempt/"))
}

func TestLoginSubmitLogout(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("login", "--email", "ann@example.com", "--password", "password1")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann Lee")

	solution := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, os.WriteFile(solution, []byte("SELECT * FROM t;"), 0o644))

	out, err = h.run("submit", "--problem", "1", "--file", solution, "--remember")
	require.NoError(t, err)
	assert.Contains(t, out, "You have passed this problem!")

	// The remembered file is used without --file.
	_, err = h.run("submit", "--problem", "1")
	require.NoError(t, err)
	assert.Len(t, h.platform.sent("/problems/1/attempt/"), 2)
	assert.Equal(t, "Bearer tok-a", h.platform.authorization("/problems/1/attempt/"))

	_, err = h.run("logout")
	require.NoError(t, err)
	assert.Equal(t, []string{`{"refresh":"tok-r"}`}, h.platform.sent("/logout/"))

	_, err = h.run("submit", "--problem", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestSubmitWrongAnswerFails(t *testing.T) {
	h := newHarness(t)
	h.login()
	solution := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, os.WriteFile(solution, []byte("SELECT 1"), 0o644))

	_, err := h.run("submit", "--problem", "1", "--file", solution)
	require.Error(t, err)
	assert.Equal(t, "Output mismatch", err.Error())
}

func TestSubmitWithoutSolution(t *testing.T) {
	h := newHarness(t)
	h.login()
	_, err := h.run("submit", "--problem", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "problem 1")
}

func TestSubmitWithEditor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("editor script needs a POSIX shell")
	}
	h := newHarness(t)
	h.login()
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", `sh -c 'printf "SELECT * FROM t;" > "$0"'`)

	out, err := h.run("submit", "--problem", "1", "--edit")
	require.NoError(t, err)
	assert.Contains(t, out, "You have passed this problem!")

	// The edited text became the draft, so a plain submit finds it.
	_, err = h.run("submit", "--problem", "1")
	require.NoError(t, err)
	assert.Len(t, h.platform.sent("/problems/1/attempt/"), 2)
}

func TestProblemsTable(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("problems", "--topic", "Select")
	require.NoError(t, err)
	assert.Contains(t, out, "Select All")
	assert.Contains(t, out, "75.0%")
}

func TestQueryCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("query", "SELECT count(*) AS n FROM t")
	require.NoError(t, err)
	assert.Contains(t, out, "n")
	assert.Contains(t, out, "3")

	out, err = h.run("query", "--generate", "count rows")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT 1;")

	_, err = h.run("query")
	require.Error(t, err)
}

func TestUploadChecksFilesLocally(t *testing.T) {
	h := newHarness(t)
	h.login()
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.json")
	require.NoError(t, os.WriteFile(meta, []byte(`{"title": 1}`), 0o644))
	sql := filepath.Join(dir, "p.sql")
	require.NoError(t, os.WriteFile(sql, []byte("CREATE TABLE t (id int);"), 0o644))

	_, err := h.run("upload", meta, sql, sql)
	require.Error(t, err)
	assert.Empty(t, h.platform.sent("/sql-problems/add/"))
}

func TestBackupCopiesStorage(t *testing.T) {
	h := newHarness(t)
	h.login()

	dest := filepath.Join(t.TempDir(), "backup")
	out, err := h.run("backup", dest)
	require.NoError(t, err)
	assert.Contains(t, out, dest)
	assert.FileExists(t, filepath.Join(dest, "storage.db"))
}
