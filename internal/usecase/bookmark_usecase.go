package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/github"
	repo "app/internal/repository"
)

// GitHub APIへのパススルーの約束
type GitHubClient interface {
	SearchUsers(ctx context.Context, query string, page int, perPage int) ([]github.SearchUser, int64, error)
	SearchRepositories(ctx context.Context, query string, page int, perPage int) ([]github.SearchRepo, int64, error)
	FetchByID(ctx context.Context, repoID int64) (github.RepoInfo, bool, error)
	FetchByOwnerRepo(ctx context.Context, ownerRepo string) (github.RepoInfo, bool, error)
}

// BookmarkUsecase は /bookmark の業務ロジックです。
type BookmarkUsecase struct {
	bookmarks repo.BookmarkRepository
	gh        GitHubClient
	idGen     IDGenerator
	clock     Clock
}

// DI
func NewBookmarkUsecase(
	bookmarks repo.BookmarkRepository,
	gh GitHubClient,
	idGen IDGenerator,
	clock Clock,
) *BookmarkUsecase {
	return &BookmarkUsecase{
		bookmarks: bookmarks,
		gh:        gh,
		idGen:     idGen,
		clock:     clock,
	}
}

type BookmarkListOutput struct {
	Items   []model.Bookmark `json:"items"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Total   int64            `json:"total"`
	HasNext bool             `json:"has_next"`
	HasPrev bool             `json:"has_prev"`
}

type BookmarkStatsOutput struct {
	TotalBookmarks int64            `json:"total_bookmarks"`
	TodayCount     int64            `json:"today_count"`
	Data           []repo.DateCount `json:"data"`
}

// Add はGitHubからリポジトリを取得してブックマークを作成する。
func (u *BookmarkUsecase) Add(ctx context.Context, userID string, repoID int64) (model.Bookmark, error) {
	if userID == "" {
		return model.Bookmark{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if repoID <= 0 {
		return model.Bookmark{}, NewHTTPError(http.StatusBadRequest, "invalid repo_id")
	}

	info, found, err := u.gh.FetchByID(ctx, repoID)
	if err != nil {
		return model.Bookmark{}, mapGitHubError(err)
	}
	if !found {
		return model.Bookmark{}, NewHTTPError(http.StatusNotFound, "repository not found")
	}

	//先に存在チェック（速い409のため）。確定判定はDBのunique制約。
	existing, err := u.bookmarks.FindByRepoID(ctx, info.RepoID, userID)
	if err != nil {
		return model.Bookmark{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if existing != nil {
		return model.Bookmark{}, NewHTTPError(http.StatusConflict, "bookmark already exists")
	}

	b := u.buildBookmark(info, userID)
	if err := u.bookmarks.Create(ctx, b); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Bookmark{}, NewHTTPError(http.StatusConflict, "bookmark already exists")
		}
		return model.Bookmark{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return *b, nil
}

// List はページング付きで本人のブックマークを返す。
func (u *BookmarkUsecase) List(ctx context.Context, userID string, page int, perPage int) (BookmarkListOutput, error) {
	if userID == "" {
		return BookmarkListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//pageは1未満なら1に丸める
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		return BookmarkListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid per_page")
	}

	items, total, err := u.bookmarks.List(ctx, userID, page, perPage)
	if err != nil {
		return BookmarkListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return BookmarkListOutput{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: int64(page)*int64(perPage) < total,
		HasPrev: page > 1,
	}, nil
}

// Delete は本人のブックマークを削除する。
func (u *BookmarkUsecase) Delete(ctx context.Context, userID string, bookmarkID string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookmarkID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid bookmark id")
	}

	err := u.bookmarks.Delete(ctx, bookmarkID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "bookmark not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// Stats は総件数・今日の件数・日別件数を返す。
// start/endは"2006-01-02"形式。endはその日の最後の瞬間まで含める。
func (u *BookmarkUsecase) Stats(ctx context.Context, userID string, startStr string, endStr string) (BookmarkStatsOutput, error) {
	if userID == "" {
		return BookmarkStatsOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	start, err := parseDateOrNil(startStr)
	if err != nil {
		return BookmarkStatsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid date format. use YYYY-MM-DD")
	}
	end, err := parseDateOrNil(endStr)
	if err != nil {
		return BookmarkStatsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid date format. use YYYY-MM-DD")
	}
	if end != nil {
		e := endOfDay(*end)
		end = &e
	}

	total, err := u.bookmarks.CountTotal(ctx, userID)
	if err != nil {
		return BookmarkStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//今日＝ローカル日付の0:00からその日の最後まで
	now := u.clock.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := u.bookmarks.CountBetween(ctx, userID, dayStart, endOfDay(dayStart))
	if err != nil {
		return BookmarkStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	rows, err := u.bookmarks.CountByDate(ctx, userID, start, end)
	if err != nil {
		return BookmarkStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return BookmarkStatsOutput{
		TotalBookmarks: total,
		TodayCount:     today,
		Data:           rows,
	}, nil
}

func (u *BookmarkUsecase) buildBookmark(info github.RepoInfo, userID string) *model.Bookmark {
	return &model.Bookmark{
		ID:             u.idGen.NewID(),
		UserID:         userID,
		GitHubRepoID:   info.RepoID,
		RepoName:       info.RepoName,
		FullName:       info.FullName,
		OwnerName:      info.OwnerName,
		OwnerID:        info.OwnerID,
		OwnerAvatarURL: info.OwnerAvatarURL,
		OwnerURL:       info.OwnerURL,
		RepoURL:        info.RepoURL,
		Description:    info.Description,
		CreatedAt:      u.clock.Now(),
	}
}

// GitHub clientのエラーをHTTPエラーへ変換する
func mapGitHubError(err error) error {
	var ue *github.UpstreamError

	switch {
	case errors.Is(err, github.ErrUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, "failed to connect to github")
	case errors.Is(err, github.ErrMalformedPayload):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &ue):
		return NewHTTPError(http.StatusBadGateway, ue.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func parseDateOrNil(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// その日の最後の瞬間
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).
		AddDate(0, 0, 1).Add(-time.Nanosecond)
}
