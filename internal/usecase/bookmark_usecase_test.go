package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/github"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// BookmarkRepository モック
// =====================

type BookmarkRepoMock struct{ mock.Mock }

func (m *BookmarkRepoMock) Create(ctx context.Context, b *model.Bookmark) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BookmarkRepoMock) CreateBatch(ctx context.Context, bs []*model.Bookmark) error {
	args := m.Called(ctx, bs)
	return args.Error(0)
}

func (m *BookmarkRepoMock) FindByFullName(ctx context.Context, fullName string, userID string) (*model.Bookmark, error) {
	args := m.Called(ctx, fullName, userID)
	b, _ := args.Get(0).(*model.Bookmark)
	return b, args.Error(1)
}

func (m *BookmarkRepoMock) FindByRepoID(ctx context.Context, repoID int64, userID string) (*model.Bookmark, error) {
	args := m.Called(ctx, repoID, userID)
	b, _ := args.Get(0).(*model.Bookmark)
	return b, args.Error(1)
}

func (m *BookmarkRepoMock) List(ctx context.Context, userID string, page int, perPage int) ([]model.Bookmark, int64, error) {
	args := m.Called(ctx, userID, page, perPage)
	items, _ := args.Get(0).([]model.Bookmark)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *BookmarkRepoMock) Delete(ctx context.Context, bookmarkID string, userID string) error {
	args := m.Called(ctx, bookmarkID, userID)
	return args.Error(0)
}

func (m *BookmarkRepoMock) CountByDate(ctx context.Context, userID string, start *time.Time, end *time.Time) ([]repo.DateCount, error) {
	args := m.Called(ctx, userID, start, end)
	rows, _ := args.Get(0).([]repo.DateCount)
	return rows, args.Error(1)
}

func (m *BookmarkRepoMock) CountTotal(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookmarkRepoMock) CountBetween(ctx context.Context, userID string, start time.Time, end time.Time) (int64, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).(int64), args.Error(1)
}

// =====================
// GitHubClient モック
// =====================

type GitHubClientMock struct{ mock.Mock }

func (m *GitHubClientMock) SearchUsers(ctx context.Context, query string, page int, perPage int) ([]github.SearchUser, int64, error) {
	args := m.Called(ctx, query, page, perPage)
	items, _ := args.Get(0).([]github.SearchUser)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *GitHubClientMock) SearchRepositories(ctx context.Context, query string, page int, perPage int) ([]github.SearchRepo, int64, error) {
	args := m.Called(ctx, query, page, perPage)
	items, _ := args.Get(0).([]github.SearchRepo)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *GitHubClientMock) FetchByID(ctx context.Context, repoID int64) (github.RepoInfo, bool, error) {
	args := m.Called(ctx, repoID)
	info, _ := args.Get(0).(github.RepoInfo)
	return info, args.Bool(1), args.Error(2)
}

func (m *GitHubClientMock) FetchByOwnerRepo(ctx context.Context, ownerRepo string) (github.RepoInfo, bool, error) {
	args := m.Called(ctx, ownerRepo)
	info, _ := args.Get(0).(github.RepoInfo)
	return info, args.Bool(1), args.Error(2)
}

func newBookmarkUsecase(bRepo *BookmarkRepoMock, gh *GitHubClientMock) *usecase.BookmarkUsecase {
	return usecase.NewBookmarkUsecase(
		bRepo,
		gh,
		&stubIDGen{id: "22222222-2222-2222-2222-222222222222"},
		&stubClock{now: time.Now()},
	)
}

var repoInfoFooBar = github.RepoInfo{
	RepoID:    42,
	RepoName:  "bar",
	FullName:  "foo/bar",
	OwnerName: "foo",
	OwnerID:   7,
	RepoURL:   "https://github.com/foo/bar",
}

// =====================
// Add
// =====================

func TestBookmarkUsecase_Add_Success(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	gh := new(GitHubClientMock)
	uc := newBookmarkUsecase(bRepo, gh)

	gh.On("FetchByID", mock.Anything, int64(42)).Return(repoInfoFooBar, true, nil)
	bRepo.On("FindByRepoID", mock.Anything, int64(42), "u1").Return(nil, nil)
	bRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Bookmark) bool {
		return b.UserID == "u1" && b.GitHubRepoID == 42 && b.FullName == "foo/bar"
	})).Return(nil)

	out, err := uc.Add(context.Background(), "u1", 42)
	assert.NoError(t, err)
	assert.Equal(t, "foo/bar", out.FullName)

	bRepo.AssertExpectations(t)
}

func TestBookmarkUsecase_Add_RepoNotFoundUpstream(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	gh := new(GitHubClientMock)
	uc := newBookmarkUsecase(bRepo, gh)

	gh.On("FetchByID", mock.Anything, int64(99)).Return(github.RepoInfo{}, false, nil)

	_, err := uc.Add(context.Background(), "u1", 99)
	assertStatus(t, err, http.StatusNotFound)
}

func TestBookmarkUsecase_Add_Conflict(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	gh := new(GitHubClientMock)
	uc := newBookmarkUsecase(bRepo, gh)

	gh.On("FetchByID", mock.Anything, int64(42)).Return(repoInfoFooBar, true, nil)
	bRepo.On("FindByRepoID", mock.Anything, int64(42), "u1").
		Return(&model.Bookmark{ID: "b1", GitHubRepoID: 42}, nil)

	_, err := uc.Add(context.Background(), "u1", 42)
	assertStatus(t, err, http.StatusConflict)

	bRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookmarkUsecase_Add_ConflictFromConstraint(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	gh := new(GitHubClientMock)
	uc := newBookmarkUsecase(bRepo, gh)

	//存在チェックはすり抜けたがDB制約で弾かれるケース（並行リクエスト）
	gh.On("FetchByID", mock.Anything, int64(42)).Return(repoInfoFooBar, true, nil)
	bRepo.On("FindByRepoID", mock.Anything, int64(42), "u1").Return(nil, nil)
	bRepo.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicate)

	_, err := uc.Add(context.Background(), "u1", 42)
	assertStatus(t, err, http.StatusConflict)
}

func TestBookmarkUsecase_Add_UpstreamUnavailable(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	gh := new(GitHubClientMock)
	uc := newBookmarkUsecase(bRepo, gh)

	gh.On("FetchByID", mock.Anything, int64(42)).
		Return(github.RepoInfo{}, false, github.ErrUnavailable)

	_, err := uc.Add(context.Background(), "u1", 42)
	assertStatus(t, err, http.StatusServiceUnavailable)
}

func TestBookmarkUsecase_Add_UpstreamError(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	gh := new(GitHubClientMock)
	uc := newBookmarkUsecase(bRepo, gh)

	gh.On("FetchByID", mock.Anything, int64(42)).
		Return(github.RepoInfo{}, false, &github.UpstreamError{Status: 500, Body: "boom"})

	_, err := uc.Add(context.Background(), "u1", 42)
	assertStatus(t, err, http.StatusBadGateway)
}

func TestBookmarkUsecase_Add_Unauthenticated(t *testing.T) {
	uc := newBookmarkUsecase(new(BookmarkRepoMock), new(GitHubClientMock))

	_, err := uc.Add(context.Background(), "", 42)
	assertStatus(t, err, http.StatusUnauthorized)
}

// =====================
// List
// =====================

func TestBookmarkUsecase_List_Empty(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	uc := newBookmarkUsecase(bRepo, new(GitHubClientMock))

	bRepo.On("List", mock.Anything, "u1", 1, 10).Return([]model.Bookmark{}, int64(0), nil)

	out, err := uc.List(context.Background(), "u1", 1, 10)
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Total)
	assert.False(t, out.HasNext)
	assert.False(t, out.HasPrev)
}

func TestBookmarkUsecase_List_PageClampedToOne(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	uc := newBookmarkUsecase(bRepo, new(GitHubClientMock))

	//page=0は1に丸める
	bRepo.On("List", mock.Anything, "u1", 1, 10).Return([]model.Bookmark{}, int64(0), nil)

	out, err := uc.List(context.Background(), "u1", 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Page)
}

func TestBookmarkUsecase_List_PaginationFlags(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	uc := newBookmarkUsecase(bRepo, new(GitHubClientMock))

	items := []model.Bookmark{{ID: "b1"}, {ID: "b2"}}
	bRepo.On("List", mock.Anything, "u1", 2, 2).Return(items, int64(5), nil)

	out, err := uc.List(context.Background(), "u1", 2, 2)
	assert.NoError(t, err)
	assert.True(t, out.HasNext) // 2*2 < 5
	assert.True(t, out.HasPrev)
}

// =====================
// Delete
// =====================

func TestBookmarkUsecase_Delete_NotFound(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	uc := newBookmarkUsecase(bRepo, new(GitHubClientMock))

	bRepo.On("Delete", mock.Anything, "missing", "u1").Return(repo.ErrNotFound)

	err := uc.Delete(context.Background(), "u1", "missing")
	assertStatus(t, err, http.StatusNotFound)
}

func TestBookmarkUsecase_Delete_Success(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	uc := newBookmarkUsecase(bRepo, new(GitHubClientMock))

	bRepo.On("Delete", mock.Anything, "b1", "u1").Return(nil)

	assert.NoError(t, uc.Delete(context.Background(), "u1", "b1"))
}

// =====================
// Stats
// =====================

func TestBookmarkUsecase_Stats_InvalidDate(t *testing.T) {
	uc := newBookmarkUsecase(new(BookmarkRepoMock), new(GitHubClientMock))

	_, err := uc.Stats(context.Background(), "u1", "2026/01/01", "")
	assertStatus(t, err, http.StatusBadRequest)

	_, err = uc.Stats(context.Background(), "u1", "", "not-a-date")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestBookmarkUsecase_Stats_Success(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	uc := newBookmarkUsecase(bRepo, new(GitHubClientMock))

	rows := []repo.DateCount{
		{Date: "2026-08-29", Count: 2},
		{Date: "2026-08-30", Count: 1},
	}

	bRepo.On("CountTotal", mock.Anything, "u1").Return(int64(3), nil)
	bRepo.On("CountBetween", mock.Anything, "u1", mock.Anything, mock.Anything).Return(int64(1), nil)
	bRepo.On("CountByDate", mock.Anything, "u1", mock.Anything, mock.Anything).Return(rows, nil)

	out, err := uc.Stats(context.Background(), "u1", "", "")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), out.TotalBookmarks)
	assert.Equal(t, int64(1), out.TodayCount)
	assert.Len(t, out.Data, 2)

	//日別件数の合計が総件数と一致する
	var sum int64
	for _, r := range out.Data {
		sum += r.Count
	}
	assert.Equal(t, out.TotalBookmarks, sum)
}

func TestBookmarkUsecase_Stats_EndDateInclusive(t *testing.T) {
	bRepo := new(BookmarkRepoMock)
	uc := newBookmarkUsecase(bRepo, new(GitHubClientMock))

	bRepo.On("CountTotal", mock.Anything, "u1").Return(int64(0), nil)
	bRepo.On("CountBetween", mock.Anything, "u1", mock.Anything, mock.Anything).Return(int64(0), nil)
	bRepo.On("CountByDate", mock.Anything, "u1", mock.Anything, mock.MatchedBy(func(end *time.Time) bool {
		//endはその日の最後の瞬間まで広げる
		return end != nil && end.Hour() == 23 && end.Minute() == 59 && end.Second() == 59
	})).Return([]repo.DateCount{}, nil)

	_, err := uc.Stats(context.Background(), "u1", "2026-08-01", "2026-08-31")
	assert.NoError(t, err)

	bRepo.AssertExpectations(t)
}
