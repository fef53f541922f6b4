package github_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/github"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_SearchRepositories_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "echo in:name", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total_count": 2,
			"items": [
				{"id": 1, "name": "echo", "full_name": "labstack/echo", "html_url": "https://github.com/labstack/echo",
				 "owner": {"login": "labstack", "id": 10, "avatar_url": "a", "html_url": "u"}},
				{"id": 2, "name": "echo-contrib", "full_name": "labstack/echo-contrib", "html_url": "h",
				 "owner": {"login": "labstack", "id": 10, "avatar_url": "a", "html_url": "u"}}
			]
		}`))
	}))
	defer srv.Close()

	c := github.NewClient(srv.URL, discardLogger())

	items, total, err := c.SearchRepositories(context.Background(), "echo in:name", 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
	assert.Equal(t, "labstack/echo", items[0].FullName)
	assert.Equal(t, "labstack", items[0].Owner.Login)
	assert.False(t, items[0].IsAdded)
}

func TestClient_SearchRepositories_UpstreamError_ReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "rate limit exceeded"}`))
	}))
	defer srv.Close()

	c := github.NewClient(srv.URL, discardLogger())

	//upstream障害は空の結果に落とす（エラーにしない）
	items, total, err := c.SearchRepositories(context.Background(), "echo", 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, items)
}

func TestClient_SearchUsers_TransportFailure_ReturnsEmpty(t *testing.T) {
	//閉じたサーバーで接続拒否を起こす
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := github.NewClient(srv.URL, discardLogger())

	items, total, err := c.SearchUsers(context.Background(), "octocat", 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, items)
}

func TestClient_FetchByID_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repositories/42", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 42, "name": "bar", "html_url": "https://github.com/foo/bar", "description": "demo",
			"owner": {"login": "foo", "id": 7, "avatar_url": "av", "html_url": "ow"}
		}`))
	}))
	defer srv.Close()

	c := github.NewClient(srv.URL, discardLogger())

	info, found, err := c.FetchByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42), info.RepoID)
	assert.Equal(t, "foo/bar", info.FullName)
	assert.Equal(t, "foo", info.OwnerName)
	assert.Equal(t, int64(7), info.OwnerID)
	assert.Equal(t, "demo", info.Description)
}

func TestClient_FetchByOwnerRepo_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := github.NewClient(srv.URL, discardLogger())

	//404は「見つからない」でありエラーではない
	_, found, err := c.FetchByOwnerRepo(context.Background(), "foo/missing")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestClient_FetchByOwnerRepo_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := github.NewClient(srv.URL, discardLogger())

	_, _, err := c.FetchByOwnerRepo(context.Background(), "foo/bar")
	var ue *github.UpstreamError
	assert.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.Status)
	assert.Contains(t, ue.Body, "boom")
}

func TestClient_FetchByID_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := github.NewClient(srv.URL, discardLogger())

	_, _, err := c.FetchByID(context.Background(), 1)
	assert.ErrorIs(t, err, github.ErrUnavailable)
}

func TestClient_FetchByID_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//owner欠落
		_, _ = w.Write([]byte(`{"id": 42, "name": "bar", "html_url": "h"}`))
	}))
	defer srv.Close()

	c := github.NewClient(srv.URL, discardLogger())

	_, _, err := c.FetchByID(context.Background(), 42)
	assert.ErrorIs(t, err, github.ErrMalformedPayload)
}
