package controller

import (
	"errors"

	"quiz_platform_backend/internal/service"
	"quiz_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AntiCheatController struct {
	AntiCheatService *service.AntiCheatService
}

func NewAntiCheatController(antiCheatService *service.AntiCheatService) *AntiCheatController {
	return &AntiCheatController{AntiCheatService: antiCheatService}
}

// EventRequest 监考事件上报
// swagger:model EventRequest
type EventRequest struct {
	Kind string `json:"kind" binding:"required"`
	Meta string `json:"meta"`
}

// Record godoc
// @Summary 上报监考事件
// @Description 切屏类事件递增计数并返回是否越限,其余事件仅记录
// @Tags 监考
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作答ID"
// @Param   body body EventRequest true "事件"
// @Success 200 {object} util.Response{data=service.RecordEventResult}
// @Failure 400 {object} util.Response "未知事件类型"
// @Failure 409 {object} util.Response "作答不存在或已交卷"
// @Router /api/attempts/{id}/anti-cheat [post]
func (c *AntiCheatController) Record(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attemptID := util.MustParseUint(ctx.Param("id"))

	var req EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AntiCheatService.RecordEvent(claims.UserID, attemptID, req.Kind, req.Meta)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidEventKind):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrAttemptNotFoundOrSubmitted):
			util.Error(ctx, 409, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// Events godoc
// @Summary 查看监考记录
// @Description 测验创建者查看某次作答的完整事件流
// @Tags 监考
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作答ID"
// @Success 200 {object} util.Response{data=[]model.AntiCheatEvent}
// @Failure 403 {object} util.Response "无权查看"
// @Failure 404 {object} util.Response "作答不存在"
// @Router /api/admin/attempts/{id}/events [get]
func (c *AntiCheatController) Events(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attemptID := util.MustParseUint(ctx.Param("id"))

	events, err := c.AntiCheatService.ListEvents(claims.UserID, attemptID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, events)
}
