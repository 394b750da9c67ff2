package controller

import (
	"encoding/json"
	"quiz_backend/internal/model"
	"quiz_backend/internal/service"
	"time"

	"github.com/shopspring/decimal"
)

// swagger:model TestSummaryDTO
type TestSummaryDTO struct {
	ID                uint      `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Duration          int64     `json:"duration"`
	QuestionCount     int       `json:"questionCount"`
	EffectiveDuration int64     `json:"effectiveDuration"`
	CreatedAt         time.Time `json:"createdAt"`
}

// swagger:model QuestionDTO
type QuestionDTO struct {
	ID            uint         `json:"id"`
	TestID        uint         `json:"testId"`
	QuestionText  string       `json:"questionText"`
	OptionA       string       `json:"optionA"`
	OptionB       string       `json:"optionB"`
	OptionC       string       `json:"optionC"`
	OptionD       string       `json:"optionD"`
	CorrectOption model.Option `json:"correctOption"`
}

// PaperQuestionDTO 考生视图，不包含正确答案
type PaperQuestionDTO struct {
	ID           uint   `json:"id"`
	QuestionText string `json:"questionText"`
	OptionA      string `json:"optionA"`
	OptionB      string `json:"optionB"`
	OptionC      string `json:"optionC"`
	OptionD      string `json:"optionD"`
}

type TestDetailDTO struct {
	TestSummaryDTO
	Questions []QuestionDTO `json:"questions"`
}

type TestPaperDTO struct {
	TestSummaryDTO
	Questions []PaperQuestionDTO `json:"questions"`
}

// swagger:model ResultDTO
type ResultDTO struct {
	ID             string          `json:"id"`
	TestID         uint            `json:"testId"`
	UserID         uint            `json:"userId"`
	TotalQuestions int             `json:"totalQuestions"`
	CorrectAnswers int             `json:"correctAnswers"`
	Percentage     float64         `json:"percentage"`
	Responses      json.RawMessage `json:"responses,omitempty" swaggertype:"array,object"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type UserDTO struct {
	ID    uint           `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  model.UserRole `json:"role"`
}

func toTestSummaryDTO(s service.TestSummary) TestSummaryDTO {
	return TestSummaryDTO{
		ID:                s.Test.ID,
		Title:             s.Test.Title,
		Description:       s.Test.Description,
		Duration:          s.Test.Duration,
		QuestionCount:     s.QuestionCount,
		EffectiveDuration: s.EffectiveDuration,
		CreatedAt:         s.Test.CreatedAt,
	}
}

func toTestSummaryDTOs(summaries []service.TestSummary) []TestSummaryDTO {
	dtos := make([]TestSummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toTestSummaryDTO(s)
	}
	return dtos
}

func toQuestionDTO(q model.Question) QuestionDTO {
	return QuestionDTO{
		ID:            q.ID,
		TestID:        q.TestID,
		QuestionText:  q.QuestionText,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectOption: q.CorrectOption,
	}
}

func toTestDetailDTO(d *service.TestDetail) TestDetailDTO {
	questions := make([]QuestionDTO, len(d.Questions))
	for i, q := range d.Questions {
		questions[i] = toQuestionDTO(q)
	}
	return TestDetailDTO{TestSummaryDTO: toTestSummaryDTO(d.Summary), Questions: questions}
}

func toTestPaperDTO(d *service.TestDetail) TestPaperDTO {
	questions := make([]PaperQuestionDTO, len(d.Questions))
	for i, q := range d.Questions {
		questions[i] = PaperQuestionDTO{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
		}
	}
	return TestPaperDTO{TestSummaryDTO: toTestSummaryDTO(d.Summary), Questions: questions}
}

// roundPercentage 响应中的百分比保留两位小数，库中保留原值
func roundPercentage(p float64) float64 {
	return decimal.NewFromFloat(p).Round(2).InexactFloat64()
}

func toResultDTO(r *model.Result) ResultDTO {
	return ResultDTO{
		ID:             r.ID,
		TestID:         r.TestID,
		UserID:         r.UserID,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		Percentage:     roundPercentage(r.Percentage),
		Responses:      json.RawMessage(r.Responses),
		CreatedAt:      r.CreatedAt,
	}
}

func toResultDTOs(results []model.Result) []ResultDTO {
	dtos := make([]ResultDTO, len(results))
	for i := range results {
		dtos[i] = toResultDTO(&results[i])
	}
	return dtos
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
