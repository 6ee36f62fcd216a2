package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"wikid/pkg/auth"
	"wikid/pkg/config"
	"wikid/pkg/logger"
	"wikid/pkg/search"
	"wikid/pkg/store"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger.Init("error")
	config.SetRuntime(&config.RuntimeConfig{SigningKeys: []string{"test-signing-key"}})
	require.NoError(t, store.Open(t.TempDir()))
	idx, err := search.New()
	require.NoError(t, err)
	require.NoError(t, idx.Build())

	srv := httptest.NewServer(New(idx, auth.SecConfig{}))
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, store.Close())
		config.SetRuntime(nil)
	})
	return srv
}

// call sends a JSON request, optionally with a session token, and decodes
// the JSON response into out when non-nil.
func call(t *testing.T, srv *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Wiki-Token", token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func signupUser(t *testing.T, srv *httptest.Server, name, password string) string {
	t.Helper()
	var res struct {
		Username string `json:"username"`
		Token    string `json:"token"`
	}
	status := call(t, srv, http.MethodPost, "/v1/signup", "",
		map[string]string{"username": name, "password": password}, &res)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, name, res.Username)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestHealthz(t *testing.T) {
	srv := setupServer(t)
	status := call(t, srv, http.MethodGet, "/healthz", "", nil, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestFullEditFlow(t *testing.T) {
	srv := setupServer(t)
	token := signupUser(t, srv, "alice", "s3cret")

	// login works with the same credentials
	var login struct {
		Token string `json:"token"`
	}
	status := call(t, srv, http.MethodPost, "/v1/login", "",
		map[string]string{"username": "alice", "password": "s3cret"}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.Token)

	status = call(t, srv, http.MethodPost, "/v1/namespaces", token,
		map[string]string{"name": "docs"}, nil)
	require.Equal(t, http.StatusCreated, status)

	var created struct {
		Slug string `json:"slug"`
		Mode string `json:"mode"`
	}
	status = call(t, srv, http.MethodPost, "/v1/namespaces/docs/pages", token,
		map[string]string{"title": "Intro", "content": "v1"}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "intro", created.Slug)
	require.Equal(t, "644", created.Mode)

	var edited struct {
		Version uint64 `json:"version"`
	}
	status = call(t, srv, http.MethodPut, "/v1/namespaces/docs/pages/intro", token,
		map[string]string{"content": "v2"}, &edited)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, uint64(0), edited.Version)

	var page struct {
		Content string `json:"content"`
	}
	status = call(t, srv, http.MethodGet, "/v1/namespaces/docs/pages/intro", "", nil, &page)
	require.Equal(t, http.StatusOK, status, "world-readable page serves anonymously")
	require.Equal(t, "v2", page.Content)

	var hist struct {
		History []struct {
			Version uint64 `json:"version"`
			Author  string `json:"author"`
			Delta   string `json:"delta"`
		} `json:"history"`
	}
	status = call(t, srv, http.MethodGet, "/v1/namespaces/docs/pages/intro/history", "", nil, &hist)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, hist.History, 1)
	require.Equal(t, uint64(0), hist.History[0].Version)
	require.Equal(t, "alice", hist.History[0].Author)
	require.NotEmpty(t, hist.History[0].Delta)

	// the fresh content is searchable, even anonymously
	var found struct {
		Results []struct {
			Namespace string `json:"namespace"`
			Slug      string `json:"slug"`
		} `json:"results"`
	}
	status = call(t, srv, http.MethodGet, "/v1/search?q=v2", "", nil, &found)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, found.Results, 1)
	require.Equal(t, "docs", found.Results[0].Namespace)
	require.Equal(t, "intro", found.Results[0].Slug)
}

func TestPersonalNamespaceIsPrivate(t *testing.T) {
	srv := setupServer(t)
	bobToken := signupUser(t, srv, "bob", "hunter2")
	aliceToken := signupUser(t, srv, "alice", "s3cret")

	status := call(t, srv, http.MethodPost, "/v1/namespaces/bob/pages", bobToken,
		map[string]string{"title": "Diary", "content": "do not read"}, nil)
	require.Equal(t, http.StatusCreated, status)

	// alice cannot read, list or write in bob's personal namespace
	require.Equal(t, http.StatusForbidden,
		call(t, srv, http.MethodGet, "/v1/namespaces/bob/pages/diary", aliceToken, nil, nil))
	require.Equal(t, http.StatusForbidden,
		call(t, srv, http.MethodGet, "/v1/namespaces/bob/pages", aliceToken, nil, nil))
	require.Equal(t, http.StatusForbidden,
		call(t, srv, http.MethodPost, "/v1/namespaces/bob/pages", aliceToken,
			map[string]string{"title": "Graffiti", "content": "hi"}, nil))

	// and bob's diary never shows up in alice's search results
	var found struct {
		Results []any `json:"results"`
	}
	status = call(t, srv, http.MethodGet, "/v1/search?q=diary", aliceToken, nil, &found)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, found.Results)

	// once bob adds alice as a member, group read bits apply (0700 has
	// none, so still forbidden), but membership changes require manage
	require.Equal(t, http.StatusForbidden,
		call(t, srv, http.MethodPost, "/v1/namespaces/bob/members", aliceToken,
			map[string]string{"username": "alice"}, nil))
	require.Equal(t, http.StatusOK,
		call(t, srv, http.MethodPost, "/v1/namespaces/bob/members", bobToken,
			map[string]string{"username": "alice"}, nil))
	require.Equal(t, http.StatusForbidden,
		call(t, srv, http.MethodGet, "/v1/namespaces/bob/pages/diary", aliceToken, nil, nil),
		"membership without group bits still denies")

	// widening the mode to 770 lets members in
	require.Equal(t, http.StatusOK,
		call(t, srv, http.MethodPut, "/v1/namespaces/bob/mode", bobToken,
			map[string]string{"mode": "770"}, nil))
	require.Equal(t, http.StatusOK,
		call(t, srv, http.MethodGet, "/v1/namespaces/bob/pages", aliceToken, nil, nil))
}

func TestModeValidation(t *testing.T) {
	srv := setupServer(t)
	token := signupUser(t, srv, "alice", "s3cret")

	require.Equal(t, http.StatusBadRequest,
		call(t, srv, http.MethodPut, "/v1/namespaces/alice/mode", token,
			map[string]string{"mode": "9x"}, nil))
	require.Equal(t, http.StatusBadRequest,
		call(t, srv, http.MethodPost, "/v1/namespaces", token,
			map[string]string{"name": "bad", "mode": "not-octal"}, nil))
}

func TestSignupConflicts(t *testing.T) {
	srv := setupServer(t)
	signupUser(t, srv, "alice", "s3cret")

	status := call(t, srv, http.MethodPost, "/v1/signup", "",
		map[string]string{"username": "alice", "password": "other"}, nil)
	require.Equal(t, http.StatusBadRequest, status)

	require.Equal(t, http.StatusBadRequest,
		call(t, srv, http.MethodPost, "/v1/signup", "",
			map[string]string{"username": "", "password": "x"}, nil))
}

func TestAnonymousEditRecordedAsAnonymous(t *testing.T) {
	srv := setupServer(t)
	token := signupUser(t, srv, "alice", "s3cret")

	// umask 0 keeps pages world-writable inside this namespace
	require.Equal(t, http.StatusCreated,
		call(t, srv, http.MethodPost, "/v1/namespaces", token,
			map[string]string{"name": "open", "umask": "0"}, nil))
	var created struct {
		Mode string `json:"mode"`
	}
	require.Equal(t, http.StatusCreated,
		call(t, srv, http.MethodPost, "/v1/namespaces/open/pages", token,
			map[string]string{"title": "Wall", "content": "v1"}, &created))
	require.Equal(t, "666", created.Mode)

	require.Equal(t, http.StatusOK,
		call(t, srv, http.MethodPut, "/v1/namespaces/open/pages/wall", "",
			map[string]string{"content": "v2"}, nil))

	var hist struct {
		History []struct {
			Author string `json:"author"`
		} `json:"history"`
	}
	require.Equal(t, http.StatusOK,
		call(t, srv, http.MethodGet, "/v1/namespaces/open/pages/wall/history", "", nil, &hist))
	require.Len(t, hist.History, 1)
	require.Equal(t, "anonymous", hist.History[0].Author)
}

func TestAdminEndpointsMetaOnly(t *testing.T) {
	srv := setupServer(t)
	aliceToken := signupUser(t, srv, "alice", "s3cret")
	metaToken := signupUser(t, srv, "meta", "very-s3cret")

	require.Equal(t, http.StatusForbidden,
		call(t, srv, http.MethodGet, "/v1/users", aliceToken, nil, nil))
	require.Equal(t, http.StatusUnauthorized,
		call(t, srv, http.MethodGet, "/v1/users", "", nil, nil))

	var users struct {
		Users []struct {
			Name string `json:"name"`
		} `json:"users"`
	}
	require.Equal(t, http.StatusOK,
		call(t, srv, http.MethodGet, "/v1/users", metaToken, nil, &users))
	require.Len(t, users.Users, 2)

	require.Equal(t, http.StatusOK,
		call(t, srv, http.MethodPost, "/v1/admin/search/rebuild", metaToken, nil, nil))
	require.Equal(t, http.StatusForbidden,
		call(t, srv, http.MethodPost, "/v1/admin/search/rebuild", aliceToken, nil, nil))
}

func TestSearchRequiresQuery(t *testing.T) {
	srv := setupServer(t)
	require.Equal(t, http.StatusBadRequest,
		call(t, srv, http.MethodGet, "/v1/search?q=", "", nil, nil))
}

func TestPageNotFound(t *testing.T) {
	srv := setupServer(t)
	token := signupUser(t, srv, "alice", "s3cret")
	require.Equal(t, http.StatusCreated,
		call(t, srv, http.MethodPost, "/v1/namespaces", token,
			map[string]string{"name": "docs"}, nil))
	require.Equal(t, http.StatusNotFound,
		call(t, srv, http.MethodGet, "/v1/namespaces/docs/pages/nope", token, nil, nil))
	require.Equal(t, http.StatusNotFound,
		call(t, srv, http.MethodGet, fmt.Sprintf("/v1/namespaces/%s/pages/x", "ghost"), token, nil, nil))
}
