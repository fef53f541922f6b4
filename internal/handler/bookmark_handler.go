package handler

import (
	"net/http"
	"strconv"
	"strings"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /bookmarkのHTTP
type BookmarkHandler struct {
	uc *usecase.BookmarkUsecase
}

// DI
func NewBookmarkHandler(uc *usecase.BookmarkUsecase) *BookmarkHandler {
	return &BookmarkHandler{uc: uc}
}

// /bookmark/* を登録
func (h *BookmarkHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/bookmark")

	g.POST("/add", h.add)
	g.GET("/list", h.list)
	g.DELETE("/:id", h.remove)
	g.GET("/stats", h.stats)
	g.POST("/import", h.importCSV)
}

func (h *BookmarkHandler) add(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	repoID, err := strconv.ParseInt(c.QueryParam("repo_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid repo_id"})
	}

	out, err := h.uc.Add(c.Request().Context(), userID, repoID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *BookmarkHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// per_page（default 10）
	perPage := 10
	if v := c.QueryParam("per_page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid per_page"})
		}
		perPage = p
	}

	out, err := h.uc.List(c.Request().Context(), userID, page, perPage)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *BookmarkHandler) remove(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "bookmark deleted successfully"})
}

func (h *BookmarkHandler) stats(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Stats(
		c.Request().Context(),
		userID,
		c.QueryParam("start_date"),
		c.QueryParam("end_date"),
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *BookmarkHandler) importCSV(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
	}
	if !strings.HasSuffix(fileHeader.Filename, ".csv") {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file must be a CSV"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read file"})
	}
	defer file.Close()

	out, err := h.uc.Import(c.Request().Context(), userID, file)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
