package controller

import (
	"course_media_backend/internal/service"
	"course_media_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Quizzes      *service.QuizService
	Entitlements *service.EntitlementService
}

func NewQuizController(quizzes *service.QuizService, entitlements *service.EntitlementService) *QuizController {
	return &QuizController{Quizzes: quizzes, Entitlements: entitlements}
}

// SaveAnswer godoc
// @Summary 提交一次测验作答
// @Description 第一枪或第二枪；第二枪仅在第一枪答错后允许
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SaveAnswerRequest true "作答内容"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 400 {object} util.Response "参数错误或次数用尽"
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /quizzes/save-answer [post]
func (c *QuizController) SaveAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 测验属于付费课程内容
	if !c.Entitlements.IsEntitled(ctx.Request.Context(), claims.UserID, req.CourseID) {
		util.Forbidden(ctx, util.ErrNotEntitled.Error())
		return
	}

	view, err := c.Quizzes.SaveAnswer(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrAttemptsExhausted),
			errors.Is(err, util.ErrAttemptConflict),
			errors.Is(err, util.ErrInvalidOption):
			// 状态/校验类错误带精确原因
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}

// MyAnswers godoc
// @Summary 我在某课程的全部作答记录
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=[]service.AttemptView}
// @Failure 400 {object} util.Response
// @Router /quizzes/my-answers/{courseId} [get]
func (c *QuizController) MyAnswers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if claims == nil || courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	views, err := c.Quizzes.MyAnswers(claims.UserID, courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, views)
}
