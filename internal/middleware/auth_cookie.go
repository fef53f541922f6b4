package middleware

import (
	"net/http"
	"strings"

	"app/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey = "user_id" // string (uuid)

	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// 認証なしで通すパス
var excludedPaths = []string{
	"/", "/auth/login", "/auth/register", "/auth/refresh", "/health", "/docs",
}

// access tokenを検証する約束
type TokenVerifier interface {
	Verify(raw string, expectedType token.Type) (string, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// AuthCookie はcookieのaccess tokenを検証するミドルウェア。
// 除外パスとpreflight以外の全リクエストで、handlerより前に必ず1回走る。
func AuthCookie(verifier TokenVerifier, allowedOrigins []string) echo.MiddlewareFunc {
	allowed := map[string]struct{}{}
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//preflightと除外パスはそのまま通す
			if c.Request().Method == http.MethodOptions || isExcludedPath(c.Request().URL.Path) {
				return next(c)
			}

			//予期しないpanicは詳細を漏らさず500にする
			defer func() {
				if r := recover(); r != nil {
					setCORSHeaders(c, allowed)
					_ = c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
				}
			}()

			//cookieからaccess tokenを取得
			cookie, err := c.Cookie(AccessCookieName)
			if err != nil || cookie.Value == "" {
				setCORSHeaders(c, allowed)
				return c.JSON(http.StatusUnauthorized, errorJSON("authentication is required"))
			}

			sub, err := verifier.Verify(cookie.Value, token.TypeAccess)
			if err != nil {
				setCORSHeaders(c, allowed)
				return c.JSON(http.StatusUnauthorized, errorJSON(verifyErrorMessage(err)))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, sub)

			return next(c)
		}
	}
}

func isExcludedPath(path string) bool {
	for _, p := range excludedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// 許可オリジンからのリクエストにはエラー応答でもCORSヘッダを返す。
// （正常系はCORSミドルウェアが付けるが、ここで返すエラーにも必要）
func setCORSHeaders(c echo.Context, allowed map[string]struct{}) {
	origin := c.Request().Header.Get(echo.HeaderOrigin)
	if origin == "" {
		return
	}
	if _, ok := allowed[origin]; !ok {
		return
	}
	c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, origin)
	c.Response().Header().Set(echo.HeaderAccessControlAllowCredentials, "true")
}

func verifyErrorMessage(err error) string {
	switch err {
	case token.ErrExpired:
		return "token expired"
	case token.ErrTypeMismatch:
		return "invalid token type"
	default:
		return "invalid token"
	}
}
