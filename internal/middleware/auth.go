package middleware

import (
	"strings"

	"quiz_platform_backend/internal/config"
	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			// 管理员直接放行
			if user.Role == model.Admin {
				hasRole = true
				break
			}
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	UpdateLastSeen(userID uint) error
}

func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			// 异步更新，不阻塞主流程
			go repo.UpdateLastSeen(claims.UserID)
		}
		c.Next()
	}
}
