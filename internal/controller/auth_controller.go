package controller

import (
	"errors"

	"quiz_platform_backend/internal/service"
	"quiz_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{AuthService: authService, UserService: userService}
}

// Register godoc
// @Summary 注册新用户
// @Description 注册学生账号并返回登录令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterInput true "注册信息"
// @Success 201 {object} util.Response{data=service.AuthResult} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Register(&req)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Error(ctx, 409, "该邮箱已被注册")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, result)
}

// Login godoc
// @Summary 登录
// @Description 邮箱密码登录,返回 JWT
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginInput true "登录信息"
// @Success 200 {object} util.Response{data=service.AuthResult} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Login(&req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Unauthorized(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// Profile godoc
// @Summary 当前用户信息
// @Tags 认证
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User}
// @Failure 401 {object} util.Response "未登录"
// @Router /api/profile [get]
func (c *AuthController) Profile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	user, err := c.UserService.Profile(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, user)
}
