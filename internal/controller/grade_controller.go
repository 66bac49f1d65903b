package controller

import (
	"errors"

	"quiz_platform_backend/internal/service"
	"quiz_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	AttemptService *service.AttemptService
}

func NewGradeController(attemptService *service.AttemptService) *GradeController {
	return &GradeController{AttemptService: attemptService}
}

// OverrideRequest 人工改分请求
// swagger:model OverrideRequest
type OverrideRequest struct {
	Points float64 `json:"points"`
	// 为空时保留机器判定
	Correct *bool `json:"correct"`
}

type OverrideResult struct {
	Score float64 `json:"score"`
}

// Override godoc
// @Summary 人工改分
// @Description 给某题改分,分值钳制到 [0, 题目满分],总分全量重算
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作答ID"
// @Param   questionId path int true "题目ID"
// @Param   body body OverrideRequest true "改分内容"
// @Success 200 {object} util.Response{data=OverrideResult}
// @Failure 403 {object} util.Response "无权操作"
// @Failure 404 {object} util.Response "作答或题目不存在"
// @Router /api/admin/attempts/{id}/answers/{questionId}/grade [post]
func (c *GradeController) Override(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attemptID := util.MustParseUint(ctx.Param("id"))
	questionID := util.MustParseUint(ctx.Param("questionId"))

	var req OverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	score, err := c.AttemptService.OverrideGrade(ctx.Request.Context(), claims.UserID, attemptID, questionID, req.Points, req.Correct)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrQuizNotFound), errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, OverrideResult{Score: score})
}
