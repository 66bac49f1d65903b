package controller

import (
	"errors"
	"time"

	"quiz_platform_backend/internal/service"
	"quiz_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService    *service.QuizService
	StorageService *service.StorageService
}

func NewQuizController(quizService *service.QuizService, storageService *service.StorageService) *QuizController {
	return &QuizController{QuizService: quizService, StorageService: storageService}
}

func (c *QuizController) mapError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrOptionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrQuizNotAccessible), errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrInvalidQuestionKind):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// ListAvailable godoc
// @Summary 可参加的测验列表
// @Description 公开且在开放时间窗内的测验,不含题目
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.AvailableQuiz}
// @Router /api/quizzes [get]
func (c *QuizController) ListAvailable(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListAvailable(time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetForTaking godoc
// @Summary 答题用测验全文
// @Description 含题目与选项,正确答案不出库
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizForTaking}
// @Failure 403 {object} util.Response "测验不可访问"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetForTaking(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	quiz, err := c.QuizService.GetForTaking(ctx.Request.Context(), claims.UserID, quizID)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// CreateQuiz godoc
// @Summary 创建测验
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.QuizInput true "测验"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(claims.UserID, &req)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// ListMine godoc
// @Summary 我创建的测验
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码,默认1"
// @Param   limit query int false "每页条数,默认10"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes [get]
func (c *QuizController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page := int(util.MustParseUint(ctx.DefaultQuery("page", "1")))
	limit := int(util.MustParseUint(ctx.DefaultQuery("limit", "10")))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	quizzes, total, err := c.QuizService.ListByCreator(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: quizzes, Total: total, Page: page, Limit: limit})
}

// UpdateQuiz godoc
// @Summary 更新测验
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Param   body body service.QuizInput true "测验"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/admin/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpdateQuiz(ctx.Request.Context(), claims.UserID, quizID, &req)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	if err := c.QuizService.DeleteQuiz(ctx.Request.Context(), claims.UserID, quizID); err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListQuestions godoc
// @Summary 测验题目列表(含答案)
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id}/questions [get]
func (c *QuizController) ListQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	questions, options, err := c.QuizService.ListQuestions(claims.UserID, quizID)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questions": questions, "options": options})
}

// AddQuestion godoc
// @Summary 添加题目
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Param   body body service.QuestionInput true "题目"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/admin/quizzes/{id}/questions [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	var req service.QuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuizService.AddQuestion(ctx.Request.Context(), claims.UserID, quizID, &req)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "题目ID"
// @Param   body body service.QuestionInput true "题目"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/admin/questions/{id} [put]
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	questionID := util.MustParseUint(ctx.Param("id"))

	var req service.QuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuizService.UpdateQuestion(ctx.Request.Context(), claims.UserID, questionID, &req)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	questionID := util.MustParseUint(ctx.Param("id"))

	if err := c.QuizService.DeleteQuestion(ctx.Request.Context(), claims.UserID, questionID); err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddOption godoc
// @Summary 添加选项
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "题目ID"
// @Param   body body service.OptionInput true "选项"
// @Success 201 {object} util.Response{data=model.Option}
// @Router /api/admin/questions/{id}/options [post]
func (c *QuizController) AddOption(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	questionID := util.MustParseUint(ctx.Param("id"))

	var req service.OptionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	o, err := c.QuizService.AddOption(ctx.Request.Context(), claims.UserID, questionID, &req)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Created(ctx, o)
}

// UpdateOption godoc
// @Summary 更新选项
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "选项ID"
// @Param   body body service.OptionInput true "选项"
// @Success 200 {object} util.Response{data=model.Option}
// @Router /api/admin/options/{id} [put]
func (c *QuizController) UpdateOption(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	optionID := util.MustParseUint(ctx.Param("id"))

	var req service.OptionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	o, err := c.QuizService.UpdateOption(ctx.Request.Context(), claims.UserID, optionID, &req)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, o)
}

// DeleteOption godoc
// @Summary 删除选项
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "选项ID"
// @Success 200 {object} util.Response
// @Router /api/admin/options/{id} [delete]
func (c *QuizController) DeleteOption(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	optionID := util.MustParseUint(ctx.Param("id"))

	if err := c.QuizService.DeleteOption(ctx.Request.Context(), claims.UserID, optionID); err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Analytics godoc
// @Summary 测验作答统计
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizAnalytics}
// @Router /api/admin/quizzes/{id}/analytics [get]
func (c *QuizController) Analytics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	analytics, err := c.QuizService.Analytics(claims.UserID, quizID)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, analytics)
}

// ListAttempts godoc
// @Summary 测验的全部作答
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=[]service.AttemptWithUser}
// @Router /api/admin/quizzes/{id}/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	attempts, err := c.QuizService.ListAttempts(claims.UserID, quizID)
	if err != nil {
		c.mapError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// UploadImage godoc
// @Summary 上传题干配图
// @Tags 管理
// @Accept  mpfd
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Param   file formData file true "图片文件"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "缺少文件"
// @Router /api/admin/quizzes/{id}/images [post]
func (c *QuizController) UploadImage(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少上传文件")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	url, err := c.StorageService.UploadQuestionImage(
		ctx.Request.Context(), quizID, file.Filename,
		file.Header.Get("Content-Type"), src, file.Size,
	)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
