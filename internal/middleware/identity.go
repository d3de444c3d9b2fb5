package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shopcart/internal/config"
	"shopcart/internal/storage"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxIdentityKey = "cart_identity" // storage.Identity
	CtxSessionKey  = "cart_session"  // storage.SessionStore

	sessionCookieName = "cart_session_id"
)

// リクエストからidentityを解決するミドルウェア。
// Bearerがあれば検証してsubをuser_idにする。無ければ匿名でセッショントークンを使う。
// 認証済みでもセッションは束縛する（匿名カートのDB移行に必要）。
func Identity(cfg config.Config, sessions storage.SessionProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := ""

			//Authorizationヘッダがあれば検証する
			authz := c.Request().Header.Get("Authorization")
			if authz != "" {
				parts := strings.SplitN(authz, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
				rawToken := strings.TrimSpace(parts[1])
				if rawToken == "" {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}

				//JWTをパースして検証する
				token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
					if t.Method != jwt.SigningMethodHS256 {
						return nil, errors.New("unexpected signing method")
					}
					return []byte(cfg.JWTSecret), nil
				})
				if err != nil || token == nil || !token.Valid {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}

				claims, ok := token.Claims.(jwt.MapClaims)
				if !ok {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}

				userID, err = parseSubject(claims["sub"])
				if err != nil || userID == "" {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
			}

			//セッショントークン（cookie）。無ければ払い出す。
			sessionToken := ""
			if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				sessionToken = cookie.Value
			} else {
				sessionToken = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     sessionCookieName,
					Value:    sessionToken,
					Path:     "/",
					HttpOnly: true,
				})
			}

			id := storage.Identity{
				SessionKey: sessionToken,
				UserID:     userID,
			}

			//contextへ保存
			c.Set(CtxIdentityKey, id)
			c.Set(CtxSessionKey, sessions.Session(sessionToken))

			return next(c)
		}
	}
}

// IdentityFromContext はミドルウェアが入れたidentityを取り出す
func IdentityFromContext(c echo.Context) (storage.Identity, bool) {
	id, ok := c.Get(CtxIdentityKey).(storage.Identity)
	return id, ok
}

// SessionFromContext は束縛済みのセッションを取り出す
func SessionFromContext(c echo.Context) (storage.SessionStore, bool) {
	sess, ok := c.Get(CtxSessionKey).(storage.SessionStore)
	return sess, ok
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// subをstringに揃える
func parseSubject(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatInt(int64(t), 10), nil
	default:
		return "", errors.New("invalid sub")
	}
}
