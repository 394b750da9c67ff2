package controller

import (
	"quiz_backend/internal/model"
	"quiz_backend/internal/service"
	"quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	Service *service.TestService
}

func NewTestController(svc *service.TestService) *TestController {
	return &TestController{Service: svc}
}

// swagger:model CreateTestRequest
type CreateTestRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Duration    int64  `json:"duration" binding:"min=0"`
}

// swagger:model AddQuestionRequest
type AddQuestionRequest struct {
	QuestionText  string `json:"questionText" binding:"required"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectOption string `json:"correctOption" binding:"required"`
}

// @Summary 创建试卷
// @Description duration 为每道题的作答时长（分钟）
// @Tags 试卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTestRequest true "试卷信息"
// @Success 201 {object} util.Response{data=TestSummaryDTO}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/admin/tests [post]
func (c *TestController) CreateTest(ctx *gin.Context) {
	var req CreateTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.Service.CreateTest(ctx.Request.Context(), req.Title, req.Description, req.Duration)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, toTestSummaryDTO(service.TestSummary{Test: *test}))
}

// @Summary 为试卷添加题目
// @Tags 试卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Param body body AddQuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=QuestionDTO}
// @Failure 400 {object} util.Response "正确答案必须为 A/B/C/D"
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/admin/tests/{id}/questions [post]
func (c *TestController) AddQuestion(ctx *gin.Context) {
	testID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req AddQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.AddQuestion(ctx.Request.Context(), testID, service.QuestionInput{
		QuestionText:  req.QuestionText,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectOption: model.Option(req.CorrectOption),
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, toQuestionDTO(*q))
}

// @Summary 获取试卷列表
// @Description effectiveDuration = duration × questionCount，每次请求重新计算
// @Tags 试卷
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]TestSummaryDTO}
// @Router /api/tests [get]
func (c *TestController) ListTests(ctx *gin.Context) {
	summaries, err := c.Service.ListTests(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, toTestSummaryDTOs(summaries))
}

// @Summary 获取试卷详情（含正确答案）
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response{data=TestDetailDTO}
// @Failure 404 {object} util.Response
// @Router /api/admin/tests/{id} [get]
func (c *TestController) GetTestDetail(ctx *gin.Context) {
	testID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.Service.GetTestDetail(ctx.Request.Context(), testID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, toTestDetailDTO(detail))
}

// @Summary 获取考试试卷
// @Description 考生作答使用，不返回正确答案
// @Tags 试卷
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response{data=TestPaperDTO}
// @Failure 404 {object} util.Response
// @Router /api/tests/{id}/paper [get]
func (c *TestController) GetTestPaper(ctx *gin.Context) {
	testID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.Service.GetTestDetail(ctx.Request.Context(), testID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, toTestPaperDTO(detail))
}

// @Summary 删除试卷
// @Description 级联删除题目；已有成绩的试卷返回 409
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/admin/tests/{id} [delete]
func (c *TestController) DeleteTest(ctx *gin.Context) {
	testID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.DeleteTest(ctx.Request.Context(), testID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": testID})
}

// @Summary 删除题目
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *TestController) DeleteQuestion(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.DeleteQuestion(ctx.Request.Context(), questionID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": questionID})
}
