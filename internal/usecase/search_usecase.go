package usecase

import (
	"context"
	"net/http"

	repo "app/internal/repository"
)

// SearchUsecase は /github/search のプロキシロジックです。
type SearchUsecase struct {
	gh        GitHubClient
	bookmarks repo.BookmarkRepository
}

// DI
func NewSearchUsecase(gh GitHubClient, bookmarks repo.BookmarkRepository) *SearchUsecase {
	return &SearchUsecase{gh: gh, bookmarks: bookmarks}
}

type SearchInput struct {
	SearchType string // "user" or "repo"
	Text       string
	Page       int
	PerPage    int
	UserID     string // 未認証なら空
}

type SearchOutput struct {
	SearchType string      `json:"search_type"`
	SearchText string      `json:"search_text"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalCount int64       `json:"total_count"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
	Items      interface{} `json:"items"`
}

// Execute は自由テキストをGitHubの修飾子付きクエリにしてプロキシ検索する。
// repo検索で認証済みなら各結果にブックマーク状態を注釈する。
func (u *SearchUsecase) Execute(ctx context.Context, in SearchInput) (SearchOutput, error) {
	if in.Page < 1 {
		return SearchOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.PerPage < 1 || in.PerPage > 100 {
		return SearchOutput{}, NewHTTPError(http.StatusBadRequest, "invalid per_page")
	}

	out := SearchOutput{
		SearchType: in.SearchType,
		SearchText: in.Text,
		Page:       in.Page,
		PerPage:    in.PerPage,
	}

	switch in.SearchType {
	case "user":
		items, total, err := u.gh.SearchUsers(ctx, in.Text+" in:login", in.Page, in.PerPage)
		if err != nil {
			return SearchOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		out.Items = items
		out.TotalCount = total

	case "repo":
		items, total, err := u.gh.SearchRepositories(ctx, in.Text+" in:name", in.Page, in.PerPage)
		if err != nil {
			return SearchOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		//認証済みならブックマーク済みかを1件ずつ調べて注釈する
		if in.UserID != "" {
			for i := range items {
				b, err := u.bookmarks.FindByRepoID(ctx, items[i].ID, in.UserID)
				if err != nil {
					continue
				}
				if b != nil {
					items[i].IsAdded = true
					items[i].BookmarkID = b.ID
				}
			}
		}

		out.Items = items
		out.TotalCount = total

	default:
		return SearchOutput{}, NewHTTPError(http.StatusBadRequest, "search_type must be 'user' or 'repo'")
	}

	out.HasNext = int64(in.Page)*int64(in.PerPage) < out.TotalCount
	out.HasPrev = in.Page > 1

	return out, nil
}
