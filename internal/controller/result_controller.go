package controller

import (
	"errors"
	"quiz_backend/internal/model"
	"quiz_backend/internal/service"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/logger"
	"quiz_backend/pkg/monitoring"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ResultController struct {
	Grading         *service.GradingService
	Tests           *service.TestService
	Leaderboard     service.Leaderboard
	Hub             *service.ResultHub
	Export          *service.ResultExportService
	LeaderboardSize int
}

func NewResultController(grading *service.GradingService, tests *service.TestService, leaderboard service.Leaderboard, hub *service.ResultHub, export *service.ResultExportService, leaderboardSize int) *ResultController {
	return &ResultController{
		Grading:         grading,
		Tests:           tests,
		Leaderboard:     leaderboard,
		Hub:             hub,
		Export:          export,
		LeaderboardSize: leaderboardSize,
	}
}

type ResponseItem struct {
	QuestionID     uint   `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

// swagger:model SubmitTestRequest
type SubmitTestRequest struct {
	TestID    uint           `json:"testId" binding:"required"`
	UserID    uint           `json:"userId"`
	Responses []ResponseItem `json:"responses" binding:"dive"`
}

// @Summary 提交答卷
// @Description 评分并保存成绩。userId 省略时为当前用户，普通用户只能为自己提交
// @Tags 考试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitTestRequest true "作答内容"
// @Success 201 {object} util.Response{data=ResultDTO}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response "试卷、用户或题目不存在"
// @Router /api/tests/submit [post]
func (c *ResultController) SubmitTest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	userID := req.UserID
	if userID == 0 {
		userID = user.UserID
	}
	if userID != user.UserID && user.Role != model.Admin {
		util.Forbidden(ctx)
		return
	}

	responses := make([]model.Response, len(req.Responses))
	for i, r := range req.Responses {
		responses[i] = model.Response{
			QuestionID:     r.QuestionID,
			SelectedOption: model.Option(r.SelectedOption),
		}
	}

	result, err := c.Grading.SubmitTest(ctx.Request.Context(), service.Submission{
		TestID:    req.TestID,
		UserID:    userID,
		Responses: responses,
	})
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			monitoring.SubmissionCounter.WithLabelValues("not_found").Inc()
		} else {
			monitoring.SubmissionCounter.WithLabelValues("error").Inc()
		}
		util.HandleServiceError(ctx, err)
		return
	}

	monitoring.SubmissionCounter.WithLabelValues("graded").Inc()
	monitoring.ScorePercentage.Observe(result.Percentage)
	dto := toResultDTO(result)
	c.publish(ctx, result, dto)

	util.Created(ctx, dto)
}

// publish 成绩已提交，排行榜与实时推送失败只记录日志
func (c *ResultController) publish(ctx *gin.Context, result *model.Result, dto ResultDTO) {
	if c.Leaderboard != nil {
		if err := c.Leaderboard.Record(ctx.Request.Context(), result); err != nil {
			logger.Log.Warn("leaderboard record failed",
				zap.String("resultId", result.ID),
				zap.Error(err),
			)
		}
	}
	if c.Hub != nil {
		c.Hub.Publish(dto)
	}
}

// @Summary 获取全部成绩
// @Tags 成绩管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]ResultDTO}
// @Router /api/admin/results [get]
func (c *ResultController) ListResults(ctx *gin.Context) {
	results, err := c.Grading.ListResults(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, toResultDTOs(results))
}

// @Summary 获取我的成绩
// @Tags 考试
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]ResultDTO}
// @Router /api/results/me [get]
func (c *ResultController) MyResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.Grading.ListResultsByUser(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, toResultDTOs(results))
}

// @Summary 试卷排行榜
// @Description 每个用户只计最高分
// @Tags 考试
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Param limit query int false "返回数量"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Failure 404 {object} util.Response
// @Router /api/tests/{id}/leaderboard [get]
func (c *ResultController) GetLeaderboard(ctx *gin.Context) {
	testID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	limit := c.LeaderboardSize
	if v := ctx.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			util.BadRequest(ctx, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	if _, err := c.Tests.Tests.FindByID(ctx.Request.Context(), testID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	entries, err := c.Leaderboard.Top(ctx.Request.Context(), testID, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	for i := range entries {
		entries[i].Percentage = roundPercentage(entries[i].Percentage)
	}
	util.Success(ctx, entries)
}

// @Summary 导出成绩 CSV
// @Description 上传到配置的存储后端并返回下载地址
// @Tags 成绩管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.ExportInfo}
// @Router /api/admin/results/export [post]
func (c *ResultController) ExportResults(ctx *gin.Context) {
	info, err := c.Export.Export(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, info)
}

// @Summary 实时成绩推送
// @Description WebSocket 连接，token 通过 query 参数传递
// @Tags 成绩管理
// @Param token query string true "JWT"
// @Router /api/admin/results/ws [get]
func (c *ResultController) ResultFeed(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Hub.ServeWS(ctx.Writer, ctx.Request, user.UserID); err != nil {
		logger.Log.Warn("result feed upgrade failed", zap.Error(err))
	}
}
