package controller

import (
	"errors"

	"quiz_platform_backend/internal/service"
	"quiz_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// Start godoc
// @Summary 开始或恢复作答
// @Description 已有进行中的作答时返回原记录,计时器不会重置
// @Tags 作答
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=service.StartAttemptResult}
// @Failure 403 {object} util.Response "测验不可访问"
// @Failure 404 {object} util.Response "测验不存在"
// @Failure 409 {object} util.Response "测验不在开放时间内"
// @Router /api/quizzes/{id}/attempts/start [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	result, err := c.AttemptService.StartOrResume(ctx.Request.Context(), claims.UserID, quizID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrQuizNotAccessible):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrQuizNotYetAvailable), errors.Is(err, util.ErrQuizNoLongerAvailable):
			util.Error(ctx, 409, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// SubmitRequest 交卷请求体
// swagger:model SubmitRequest
type SubmitRequest struct {
	Answers []service.SubmitAnswer `json:"answers"`
	// 客户端判定超时或违规时置 true,服务端会独立复核
	Auto bool `json:"auto"`
}

// Submit godoc
// @Summary 交卷
// @Description 判分并将作答置为终态,重复交卷返回 409
// @Tags 作答
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作答ID"
// @Param   body body SubmitRequest true "全部作答"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 409 {object} util.Response "作答不存在或已交卷"
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attemptID := util.MustParseUint(ctx.Param("id"))

	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AttemptService.Submit(ctx.Request.Context(), claims.UserID, attemptID, req.Answers, req.Auto)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFoundOrSubmitted):
			util.Error(ctx, 409, err.Error())
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// My godoc
// @Summary 我的作答记录
// @Tags 作答
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.MyAttempt}
// @Router /api/attempts/my [get]
func (c *AttemptController) My(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attempts, err := c.AttemptService.ListMine(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// Result godoc
// @Summary 成绩详情
// @Description 进行中的作答不可见;是否展示正确答案取决于测验策略
// @Tags 作答
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作答ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 404 {object} util.Response "作答不存在"
// @Failure 409 {object} util.Response "尚未交卷"
// @Router /api/attempts/{id}/result [get]
func (c *AttemptController) Result(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attemptID := util.MustParseUint(ctx.Param("id"))

	result, err := c.AttemptService.Result(ctx.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrResultNotVisible):
			util.Error(ctx, 409, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}
