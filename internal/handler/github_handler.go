package handler

import (
	"net/http"
	"strconv"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /githubのHTTP
type GitHubHandler struct {
	uc *usecase.SearchUsecase
}

// DI
func NewGitHubHandler(uc *usecase.SearchUsecase) *GitHubHandler {
	return &GitHubHandler{uc: uc}
}

// /github/search を登録
func (h *GitHubHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/github/search", h.search)
}

func (h *GitHubHandler) search(c echo.Context) error {
	text := c.QueryParam("text")
	if text == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "text is required"})
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	perPage := 10
	if v := c.QueryParam("per_page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid per_page"})
		}
		perPage = p
	}

	//未認証（除外パス経由など）ならuserIDは空のまま＝注釈なし
	userID, _ := getUserIDFromContext(c)

	out, err := h.uc.Execute(c.Request().Context(), usecase.SearchInput{
		SearchType: c.QueryParam("search_type"),
		Text:       text,
		Page:       page,
		PerPage:    perPage,
		UserID:     userID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
