package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	//503 接続不可（DNS・timeout・接続拒否）
	ErrUnavailable = errors.New("github unavailable")
	//422 upstreamのJSONが想定の形でない
	ErrMalformedPayload = errors.New("malformed github payload")
)

// 404以外のエラーステータス（502として返す）
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github returned status %d: %s", e.Status, e.Body)
}

// 検索結果のユーザー
type SearchUser struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// 検索結果のリポジトリ。
// IsAdded/BookmarkIDは認証済みユーザー向けの注釈（handlerで埋める）。
type SearchRepo struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	FullName    string     `json:"full_name"`
	Owner       SearchUser `json:"owner"`
	HTMLURL     string     `json:"html_url"`
	Description string     `json:"description"`
	IsAdded     bool       `json:"isAdded"`
	BookmarkID  string     `json:"bookmarkId,omitempty"`
}

// 単体取得をブックマーク作成用の形に正規化したもの
type RepoInfo struct {
	RepoID         int64
	RepoName       string
	FullName       string
	OwnerName      string
	OwnerID        int64
	OwnerAvatarURL string
	OwnerURL       string
	RepoURL        string
	Description    string
}

// ClientはGitHub REST APIへのパススルー。
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// DI
// 全体timeout 10秒・接続timeout 5秒。リトライはしない。
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		logger: logger,
	}
}

// SearchUsers はユーザー検索。upstream障害時は空の結果に落とす。
func (c *Client) SearchUsers(ctx context.Context, query string, page int, perPage int) ([]SearchUser, int64, error) {
	var body struct {
		TotalCount int64        `json:"total_count"`
		Items      []SearchUser `json:"items"`
	}

	if err := c.search(ctx, "search/users", query, page, perPage, &body); err != nil {
		//障害は空で返す（呼び出し側は失敗を見ない方針）
		c.logger.Warn("github user search failed", "query", query, "error", err)
		return []SearchUser{}, 0, nil
	}

	return body.Items, body.TotalCount, nil
}

// SearchRepositories はリポジトリ検索。upstream障害時は空の結果に落とす。
func (c *Client) SearchRepositories(ctx context.Context, query string, page int, perPage int) ([]SearchRepo, int64, error) {
	var body struct {
		TotalCount int64        `json:"total_count"`
		Items      []SearchRepo `json:"items"`
	}

	if err := c.search(ctx, "search/repositories", query, page, perPage, &body); err != nil {
		c.logger.Warn("github repository search failed", "query", query, "error", err)
		return []SearchRepo{}, 0, nil
	}

	return body.Items, body.TotalCount, nil
}

func (c *Client) search(ctx context.Context, path string, query string, page int, perPage int, dst interface{}) error {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	raw, status, err := c.get(ctx, c.baseURL+path+"?"+params.Encode())
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &UpstreamError{Status: status, Body: truncate(string(raw), 300)}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// FetchByID はリポジトリIDで1件取得する。
// upstreamの404は(RepoInfo{}, false, nil)で表す。
func (c *Client) FetchByID(ctx context.Context, repoID int64) (RepoInfo, bool, error) {
	return c.fetchRepo(ctx, c.baseURL+"repositories/"+strconv.FormatInt(repoID, 10))
}

// FetchByOwnerRepo は"owner/repo"で1件取得する。
func (c *Client) FetchByOwnerRepo(ctx context.Context, ownerRepo string) (RepoInfo, bool, error) {
	return c.fetchRepo(ctx, c.baseURL+"repos/"+ownerRepo)
}

func (c *Client) fetchRepo(ctx context.Context, rawURL string) (RepoInfo, bool, error) {
	raw, status, err := c.get(ctx, rawURL)
	if err != nil {
		return RepoInfo{}, false, err
	}

	// not-foundはエラーではなく「見つからない」
	if status == http.StatusNotFound {
		return RepoInfo{}, false, nil
	}
	if status >= 400 {
		return RepoInfo{}, false, &UpstreamError{Status: status, Body: truncate(string(raw), 300)}
	}

	info, err := normalizeRepo(raw)
	if err != nil {
		return RepoInfo{}, false, err
	}
	return info, true, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		//transport層の失敗（DNS・timeout・接続拒否）
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return body, resp.StatusCode, nil
}

// upstreamのリポジトリJSONをRepoInfoに正規化する。
// 必須フィールドが欠けていたらErrMalformedPayload。
func normalizeRepo(raw []byte) (RepoInfo, error) {
	var repo struct {
		ID          *int64  `json:"id"`
		Name        *string `json:"name"`
		HTMLURL     string  `json:"html_url"`
		Description string  `json:"description"`
		Owner       *struct {
			Login     *string `json:"login"`
			ID        *int64  `json:"id"`
			AvatarURL string  `json:"avatar_url"`
			HTMLURL   string  `json:"html_url"`
		} `json:"owner"`
	}

	if err := json.Unmarshal(raw, &repo); err != nil {
		return RepoInfo{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch {
	case repo.ID == nil:
		return RepoInfo{}, fmt.Errorf("%w: missing id", ErrMalformedPayload)
	case repo.Name == nil || *repo.Name == "":
		return RepoInfo{}, fmt.Errorf("%w: missing name", ErrMalformedPayload)
	case repo.Owner == nil:
		return RepoInfo{}, fmt.Errorf("%w: missing owner", ErrMalformedPayload)
	case repo.Owner.Login == nil || *repo.Owner.Login == "":
		return RepoInfo{}, fmt.Errorf("%w: missing owner login", ErrMalformedPayload)
	case repo.Owner.ID == nil:
		return RepoInfo{}, fmt.Errorf("%w: missing owner id", ErrMalformedPayload)
	}

	return RepoInfo{
		RepoID:         *repo.ID,
		RepoName:       *repo.Name,
		FullName:       *repo.Owner.Login + "/" + *repo.Name,
		OwnerName:      *repo.Owner.Login,
		OwnerID:        *repo.Owner.ID,
		OwnerAvatarURL: repo.Owner.AvatarURL,
		OwnerURL:       repo.Owner.HTMLURL,
		RepoURL:        repo.HTMLURL,
		Description:    repo.Description,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
