package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCreds is an in-memory CredentialStore for tests.
type memCreds struct {
	mu       sync.Mutex
	access   string
	refresh  string
	setCalls int
	cleared  bool
}

func (m *memCreds) Tokens() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.refresh
}

func (m *memCreds) SetTokens(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = access, refresh
	m.setCalls++
	return nil
}

func (m *memCreds) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
	m.cleared = true
	return nil
}

func TestRequest_AttachesBearerHeader(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(User{Email: "a@b.c"})
	}))
	defer srv.Close()

	c := New(srv.URL, &memCreds{access: "tok-1"})
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Email)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestRequest_RefreshAndRetryOnceOn401(t *testing.T) {
	var meCalls, refreshCalls int
	var retryAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			meCalls++
			if r.Header.Get("Authorization") == "Bearer stale" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			retryAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(User{Email: "a@b.c"})
		case "/auth/refresh":
			refreshCalls++
			// The refresh call itself must be unauthenticated.
			assert.Empty(t, r.Header.Get("Authorization"))
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "refresh-1", body["refresh_token"])
			json.NewEncoder(w).Encode(TokenResponse{AccessToken: "fresh", RefreshToken: "refresh-2"})
		}
	}))
	defer srv.Close()

	creds := &memCreds{access: "stale", refresh: "refresh-1"}
	c := New(srv.URL, creds)

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, meCalls, "original call plus exactly one retry")
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, "Bearer fresh", retryAuth)

	access, refresh := creds.Tokens()
	assert.Equal(t, "fresh", access)
	assert.Equal(t, "refresh-2", refresh)
}

func TestRequest_FailedRefreshClearsCredentials(t *testing.T) {
	var meCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			meCalls++
			w.WriteHeader(http.StatusUnauthorized)
		case "/auth/refresh":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "refresh expired"})
		}
	}))
	defer srv.Close()

	creds := &memCreds{access: "stale", refresh: "dead"}
	c := New(srv.URL, creds)

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, meCalls, "no retry after a failed refresh")
	assert.True(t, creds.cleared)
	access, refresh := creds.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestRequest_SecondUnauthorizedDoesNotLoop(t *testing.T) {
	var meCalls, refreshCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			meCalls++
			w.WriteHeader(http.StatusUnauthorized)
		case "/auth/refresh":
			refreshCalls++
			json.NewEncoder(w).Encode(TokenResponse{AccessToken: "fresh", RefreshToken: "r2"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, &memCreds{access: "stale", refresh: "r1"})
	_, err := c.Me(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.Equal(t, 2, meCalls)
	assert.Equal(t, 1, refreshCalls, "the retry's 401 must not trigger a second refresh")
}

func TestRequest_No401RefreshWithoutRefreshToken(t *testing.T) {
	var meCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meCalls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, &memCreds{access: "stale"})
	_, err := c.Me(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 1, meCalls)
}

func TestRequest_SurfacesBackendDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "title already exists"})
	}))
	defer srv.Close()

	c := New(srv.URL, &memCreds{access: "tok"})
	_, err := c.CreateTask(context.Background(), NewTask{Title: "x"})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusConflict, reqErr.Status)
	assert.Equal(t, "title already exists", reqErr.Message)
}

func TestRequest_GenericMessageForOpaqueBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, &memCreds{})
	_, err := c.Workspaces(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Request failed", reqErr.Message)
}

func TestLogin_PersistsTokenPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "a1", RefreshToken: "r1"})
	}))
	defer srv.Close()

	creds := &memCreds{}
	c := New(srv.URL, creds)
	_, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	access, refresh := creds.Tokens()
	assert.Equal(t, "a1", access)
	assert.Equal(t, "r1", refresh)
}

func TestLogout_AlwaysClearsLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	creds := &memCreds{access: "a", refresh: "r"}
	c := New(srv.URL, creds)
	err := c.Logout(context.Background())

	var reqErr *RequestError
	assert.True(t, errors.As(err, &reqErr), "backend failure is still reported")
	assert.True(t, creds.cleared, "local clear happens regardless")
}

func TestUpdateTask_SendsOnlySetFields(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(Task{ID: "t1", Status: "done"})
	}))
	defer srv.Close()

	c := New(srv.URL, &memCreds{access: "tok"})
	status := StatusDone
	_, err := c.UpdateTask(context.Background(), "t1", TaskPatch{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"status": "done"}, body,
		"a drag move must carry the status field and nothing else")
}

func TestID_UnmarshalToleratesNumbers(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "project_id": "abc"}`), &task))
	assert.Equal(t, ID("42"), task.ID)
	assert.Equal(t, ID("abc"), task.ProjectID)
}

func TestDate_Roundtrip(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-01-01"`), &d))
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-01"`, string(out))

	var null Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &null))
	assert.True(t, null.IsZero())
}
