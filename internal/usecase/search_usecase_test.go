package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/github"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSearchUsecase_UserSearch_BuildsLoginQualifier(t *testing.T) {
	gh := new(GitHubClientMock)
	uc := usecase.NewSearchUsecase(gh, new(BookmarkRepoMock))

	users := []github.SearchUser{{Login: "octocat", ID: 1}}
	gh.On("SearchUsers", mock.Anything, "octocat in:login", 1, 10).Return(users, int64(1), nil)

	out, err := uc.Execute(context.Background(), usecase.SearchInput{
		SearchType: "user",
		Text:       "octocat",
		Page:       1,
		PerPage:    10,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.TotalCount)
	assert.False(t, out.HasNext)
	assert.False(t, out.HasPrev)

	gh.AssertExpectations(t)
}

func TestSearchUsecase_RepoSearch_AnnotatesBookmarks(t *testing.T) {
	gh := new(GitHubClientMock)
	bRepo := new(BookmarkRepoMock)
	uc := usecase.NewSearchUsecase(gh, bRepo)

	repos := []github.SearchRepo{
		{ID: 42, Name: "bar", FullName: "foo/bar"},
		{ID: 43, Name: "baz", FullName: "foo/baz"},
	}
	gh.On("SearchRepositories", mock.Anything, "foo in:name", 1, 10).Return(repos, int64(2), nil)

	//42はブックマーク済み、43は未
	bRepo.On("FindByRepoID", mock.Anything, int64(42), "u1").
		Return(&model.Bookmark{ID: "b1", GitHubRepoID: 42}, nil)
	bRepo.On("FindByRepoID", mock.Anything, int64(43), "u1").Return(nil, nil)

	out, err := uc.Execute(context.Background(), usecase.SearchInput{
		SearchType: "repo",
		Text:       "foo",
		Page:       1,
		PerPage:    10,
		UserID:     "u1",
	})
	assert.NoError(t, err)

	items, ok := out.Items.([]github.SearchRepo)
	assert.True(t, ok)
	assert.True(t, items[0].IsAdded)
	assert.Equal(t, "b1", items[0].BookmarkID)
	assert.False(t, items[1].IsAdded)
	assert.Empty(t, items[1].BookmarkID)
}

func TestSearchUsecase_RepoSearch_NoAnnotationWhenAnonymous(t *testing.T) {
	gh := new(GitHubClientMock)
	bRepo := new(BookmarkRepoMock)
	uc := usecase.NewSearchUsecase(gh, bRepo)

	repos := []github.SearchRepo{{ID: 42, Name: "bar", FullName: "foo/bar"}}
	gh.On("SearchRepositories", mock.Anything, "foo in:name", 1, 10).Return(repos, int64(1), nil)

	out, err := uc.Execute(context.Background(), usecase.SearchInput{
		SearchType: "repo",
		Text:       "foo",
		Page:       1,
		PerPage:    10,
	})
	assert.NoError(t, err)

	items := out.Items.([]github.SearchRepo)
	assert.False(t, items[0].IsAdded)

	bRepo.AssertNotCalled(t, "FindByRepoID", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchUsecase_InvalidSearchType(t *testing.T) {
	uc := usecase.NewSearchUsecase(new(GitHubClientMock), new(BookmarkRepoMock))

	_, err := uc.Execute(context.Background(), usecase.SearchInput{
		SearchType: "org",
		Text:       "foo",
		Page:       1,
		PerPage:    10,
	})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestSearchUsecase_InvalidPaging(t *testing.T) {
	uc := usecase.NewSearchUsecase(new(GitHubClientMock), new(BookmarkRepoMock))

	_, err := uc.Execute(context.Background(), usecase.SearchInput{
		SearchType: "repo", Text: "foo", Page: 0, PerPage: 10,
	})
	assertStatus(t, err, http.StatusBadRequest)

	_, err = uc.Execute(context.Background(), usecase.SearchInput{
		SearchType: "repo", Text: "foo", Page: 1, PerPage: 101,
	})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestSearchUsecase_HasNextComputedFromTotal(t *testing.T) {
	gh := new(GitHubClientMock)
	uc := usecase.NewSearchUsecase(gh, new(BookmarkRepoMock))

	gh.On("SearchUsers", mock.Anything, "a in:login", 1, 10).
		Return([]github.SearchUser{}, int64(25), nil)

	out, err := uc.Execute(context.Background(), usecase.SearchInput{
		SearchType: "user", Text: "a", Page: 1, PerPage: 10,
	})
	assert.NoError(t, err)
	assert.True(t, out.HasNext) // 1*10 < 25
	assert.False(t, out.HasPrev)
}
