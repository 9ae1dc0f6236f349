package handle

import (
	"fmt"
	"multisig_svr/config"
	"multisig_svr/http_server/api_code"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CheckJwt guards the internal ops endpoints with an HS256 bearer token
// signed by the configured key.
func CheckJwt() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		auth := ctx.GetHeader("Authorization")
		tokenStr := strings.TrimPrefix(auth, "Bearer ")
		if tokenStr == "" || tokenStr == auth {
			ctx.AbortWithStatusJSON(http.StatusOK, api_code.ApiRespErr(api_code.ApiCodePermissionDenied, "missing token"))
			return
		}
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(config.Cfg.Server.JwtKey), nil
		})
		if err != nil || !token.Valid {
			log.Warn("CheckJwt invalid token:", err)
			ctx.AbortWithStatusJSON(http.StatusOK, api_code.ApiRespErr(api_code.ApiCodePermissionDenied, "invalid token"))
			return
		}
		ctx.Next()
	}
}
