package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"
	appmw "app/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はルートとミドルウェアを組み立てたechoを返す。
func New(
	cfg config.Config,
	verifier appmw.TokenVerifier,
	authH *handler.AuthHandler,
	bookmarkH *handler.BookmarkHandler,
	githubH *handler.GitHubHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())

	//CORS：許可リストに一致したオリジンのみ反映、credentialsあり
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	//認証ゲート（除外パス以外はhandlerより前に必ず通る）
	e.Use(appmw.AuthCookie(verifier, cfg.CORSOrigins))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "github marker api"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authH.RegisterRoutes(e)
	bookmarkH.RegisterRoutes(e)
	githubH.RegisterRoutes(e)

	return e
}
