package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/store"
	"github.com/interactive-sql-tutor/sqltutor/internal/upload"
)

type recorded struct {
	method, path, query, auth, contentType string
	body                                   []byte
}

type backend struct {
	mu    sync.Mutex
	calls []recorded
}

func (b *backend) all() []recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recorded(nil), b.calls...)
}

func newBackend(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, store.Store, *backend) {
	t.Helper()
	calls := &backend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		calls.mu.Lock()
		calls.calls = append(calls.calls, recorded{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		calls.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	st := store.NewMemoryStore()
	return NewClient(srv.URL+"/api/", st), st, calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLoginSendsCredentialsWithoutBearer(t *testing.T) {
	c, st, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": 3, "name": "Ada", "role": "Student", "email": "a@b.com",
			"access": "acc", "refresh": "ref",
		})
	})
	require.NoError(t, st.Set(store.AccessTokenKey, "stale"))

	profile, err := c.Login(context.Background(), "a@b.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name())
	assert.Equal(t, "acc", profile.AccessToken())

	require.Len(t, calls.all(), 1)
	call := calls.all()[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/api/auth/login/", call.path)
	assert.Empty(t, call.auth, "login is a public call")
	assert.JSONEq(t, `{"email":"a@b.com","password":"password1"}`, string(call.body))
}

func TestLoginWithoutTokens(t *testing.T) {
	c, _, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"name": "Ada"})
	})
	_, err := c.Login(context.Background(), "a@b.com", "password1")
	assert.ErrorIs(t, err, ErrMissingTokens)
}

func TestServerErrorIsStringifiedPayload(t *testing.T) {
	c, _, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid credentials"})
	})

	_, err := c.Login(context.Background(), "a@b.com", "password1")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, `{"detail":"Invalid credentials"}`, apiErr.Error())
	assert.Equal(t, `{"detail":"Invalid credentials"}`, Message(err))
	assert.Equal(t, "Invalid credentials", apiErr.Field("detail"))
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestNonJSONErrorBody(t *testing.T) {
	c, _, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "bad gateway")
	})
	_, err := c.GetProblem(context.Background(), 1)
	assert.Equal(t, `"bad gateway"`, Message(err))
}

func TestTransportErrorKeepsRawMessage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, store.NewMemoryStore())
	_, err := c.ListProblems(context.Background(), domain.ProblemFilter{})
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
	assert.NotContains(t, Message(err), "GET /sql-problems/")
	assert.Contains(t, err.Error(), "GET /sql-problems/")
}

func TestAuthorizedCallsCarryBearer(t *testing.T) {
	c, st, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/problems/5/attempt/":
			writeJSON(w, http.StatusOK, map[string]string{"result": "wrong", "feedback": "Missing GROUP BY"})
		case "/api/problems/5/history/":
			writeJSON(w, http.StatusOK, []map[string]any{{"status": "Completed", "score": 100, "time_taken": 42, "hints_used": 1, "submission_date": "2024-01-01"}})
		case "/api/llm/hint/":
			writeJSON(w, http.StatusOK, map[string]string{"hint": "Think about JOIN"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	require.NoError(t, st.SetMany(map[string]string{store.AccessTokenKey: "acc", store.RefreshTokenKey: "ref"}))
	ctx := context.Background()

	result, err := c.SubmitAttempt(ctx, 5, AttemptRequest{UserQuery: "SELECT 1", HintsUsed: 2, TimeTaken: 30})
	require.NoError(t, err)
	assert.False(t, result.Passed())
	assert.Equal(t, "Missing GROUP BY", result.Feedback)

	history, err := c.AttemptHistory(ctx, 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Completed())

	hint, err := c.RequestHint(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Think about JOIN", hint)

	require.Len(t, calls.all(), 3)
	for _, call := range calls.all() {
		assert.Equal(t, "Bearer acc", call.auth, call.path)
	}
	assert.JSONEq(t, `{"user_query":"SELECT 1","hints_used":2,"time_taken":30}`, string(calls.all()[0].body))
}

func TestAuthorizedCallWithoutTokenMakesNoRequest(t *testing.T) {
	c, _, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	_, err := c.RunQuery(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, calls.all())
}

func TestListProblemsQuery(t *testing.T) {
	c, _, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"problem_id": 1, "title": "Select all", "acceptance": 50.0}})
	})

	list, err := c.ListProblems(context.Background(), domain.ProblemFilter{Difficulty: "Easy", Topic: "Join"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Select all", list[0].Title)
	assert.Equal(t, "/api/sql-problems/", calls.all()[0].path)
	assert.Equal(t, "difficulty=Easy&topic=Join", calls.all()[0].query)
	assert.Empty(t, calls.all()[0].auth)
}

func TestGetProblemDecodesDetail(t *testing.T) {
	c, _, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"problem_id":5,"title":"T","description":"D","difficulty_level":"Easy","topic":"Join",
			"requires_order":true,"tables":[{"table_name":"emp","columns":[{"name":"id","type":"int","description":"pk"}]}],
			"input_data":{"emp":[["id"],[1]]},"hints":["h"],"expected_output":[["id"],[1]],"acceptance":12.5}`)
	})

	p, err := c.GetProblem(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, p.ProblemID)
	assert.True(t, p.RequiresOrder)
	assert.Equal(t, "emp", p.Tables[0].TableName)
	assert.Equal(t, []any{"id"}, p.InputData["emp"].Header())
	assert.Len(t, p.ExpectedOutput.Body(), 1)
}

func TestUploadProblemIsMultipart(t *testing.T) {
	var (
		mu     sync.Mutex
		fields []string
	)
	c, st, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			mu.Lock()
			for name := range r.MultipartForm.File {
				fields = append(fields, name)
			}
			mu.Unlock()
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	})
	require.NoError(t, st.Set(store.AccessTokenKey, "acc"))

	err := c.UploadProblem(context.Background(), upload.Bundle{
		Metadata: &upload.File{Name: "m.json", Data: []byte(`{}`)},
		Problem:  &upload.File{Name: "p.sql", Data: []byte("CREATE TABLE t (id INT);")},
		Solution: &upload.File{Name: "s.sql", Data: []byte("SELECT id FROM t;")},
	})
	require.NoError(t, err)
	mu.Lock()
	assert.ElementsMatch(t, []string{"metadata_file", "problem_file", "solution_file"}, fields)
	mu.Unlock()
	assert.True(t, strings.HasPrefix(calls.all()[0].contentType, "multipart/form-data"))
	assert.Equal(t, "Bearer acc", calls.all()[0].auth)
}

func TestInstructorCalls(t *testing.T) {
	c, st, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/instructor/allowed-schema/":
			writeJSON(w, http.StatusOK, map[string]any{"students": []map[string]string{{"name": "id", "type": "int"}}})
		case "/api/instructor/query-sql/":
			writeJSON(w, http.StatusOK, map[string]any{"columns": []string{"1"}, "rows": [][]any{{1}}})
		case "/api/llm-analytics/generate/":
			writeJSON(w, http.StatusOK, map[string]string{"query": "```sql\nSELECT 1\n```"})
		}
	})
	require.NoError(t, st.Set(store.AccessTokenKey, "acc"))
	ctx := context.Background()

	schemas, err := c.AllowedSchemas(ctx)
	require.NoError(t, err)
	assert.Equal(t, "int", schemas["students"][0].Type)

	result, err := c.RunQuery(ctx, "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, result.Columns)
	assert.Equal(t, [][]any{{float64(1)}}, result.Rows)

	generated, err := c.GenerateQuery(ctx, "count students")
	require.NoError(t, err)
	assert.Contains(t, generated, "SELECT 1")

	assert.JSONEq(t, `{"query":"SELECT 1"}`, string(calls.all()[1].body))
	assert.JSONEq(t, `{"prompt":"count students"}`, string(calls.all()[2].body))
}

func TestAuthEndpoints(t *testing.T) {
	c, st, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"name": "Ada Lovelace"})
	})
	require.NoError(t, st.Set(store.AccessTokenKey, "acc"))
	ctx := context.Background()

	_, err := c.Register(ctx, RegisterRequest{Name: "Ada", Email: "a@b.com", Password: "password1", VerifyPassword: "password1"})
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx, "ref"))
	updated, err := c.UpdateProfile(ctx, UpdateProfileRequest{Name: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name())

	require.Len(t, calls.all(), 3)
	assert.Equal(t, "/api/auth/register/", calls.all()[0].path)
	assert.Empty(t, calls.all()[0].auth)
	assert.Equal(t, "/api/logout/", calls.all()[1].path)
	assert.JSONEq(t, `{"refresh":"ref"}`, string(calls.all()[1].body))
	assert.Equal(t, http.MethodPut, calls.all()[2].method)
	assert.Equal(t, "Bearer acc", calls.all()[2].auth)
}
