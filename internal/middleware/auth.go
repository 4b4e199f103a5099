package middleware

import (
	"raid_checker_backend/internal/config"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/util"
	"raid_checker_backend/pkg/logger"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err), zap.String("request_id", c.GetString(util.RequestIDKey)))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.AccountKey, claims)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.AccountRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := util.GetAccountFromContext(c)
		if account == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		for _, role := range roles {
			if account.Role == role {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
		c.Abort()
	}
}

// AccountScope 限制 :accountId 路由只能访问自己的账号，master 除外
func AccountScope(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := util.GetAccountFromContext(c)
		if account == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		id, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			util.BadRequest(c, "invalid "+param)
			c.Abort()
			return
		}

		if account.Role != model.Master && uint(id) != account.AccountID {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
