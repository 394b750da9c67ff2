package service

import (
	"context"
	"encoding/json"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GradingService 评分引擎，是唯一写入 results 表的组件
type GradingService struct {
	DB        *gorm.DB
	Tests     *repository.TestRepository
	Questions *repository.QuestionRepository
	Results   *repository.ResultRepository
	Users     *repository.UserRepository
}

func NewGradingService(db *gorm.DB, tests *repository.TestRepository, questions *repository.QuestionRepository, results *repository.ResultRepository, users *repository.UserRepository) *GradingService {
	return &GradingService{
		DB:        db,
		Tests:     tests,
		Questions: questions,
		Results:   results,
		Users:     users,
	}
}

type Submission struct {
	TestID    uint
	UserID    uint
	Responses []model.Response
}

// Percentage 0 道题时返回 0
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100.0 * float64(correct) / float64(total)
}

// Grade 统计答对数。每个 questionId 必须属于该试卷，否则返回 NotFound("Question")；
// 同一道题重复作答只按第一次计分。
func Grade(questions []model.Question, responses []model.Response) (int, error) {
	byID := make(map[uint]model.Option, len(questions))
	for _, q := range questions {
		byID[q.ID] = q.CorrectOption
	}

	correct := 0
	seen := make(map[uint]bool, len(responses))
	for _, r := range responses {
		answer, ok := byID[r.QuestionID]
		if !ok {
			return 0, util.NewNotFound("Question")
		}
		if seen[r.QuestionID] {
			continue
		}
		seen[r.QuestionID] = true
		if r.SelectedOption == answer {
			correct++
		}
	}
	return correct, nil
}

func (s *GradingService) SubmitTest(ctx context.Context, sub Submission) (*model.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "GradingService.SubmitTest",
		attribute.Int64("test.id", int64(sub.TestID)),
		attribute.Int64("user.id", int64(sub.UserID)),
		attribute.Int("responses", len(sub.Responses)),
	)
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	responses := sub.Responses
	if responses == nil {
		responses = []model.Response{}
	}
	raw, err := json.Marshal(responses)
	if err != nil {
		return nil, err
	}

	var result *model.Result
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Tests.WithTx(tx).ShareLockByID(ctx, sub.TestID); err != nil {
			return err
		}
		if _, err := s.Users.WithTx(tx).FindByID(ctx, sub.UserID); err != nil {
			return err
		}

		questions, err := s.Questions.WithTx(tx).ListByTest(ctx, sub.TestID)
		if err != nil {
			return err
		}

		correct, err := Grade(questions, responses)
		if err != nil {
			return err
		}

		total := len(questions)
		result = &model.Result{
			TestID:         sub.TestID,
			UserID:         sub.UserID,
			TotalQuestions: total,
			CorrectAnswers: correct,
			Percentage:     Percentage(correct, total),
			Responses:      datatypes.JSON(raw),
		}
		return s.Results.WithTx(tx).Create(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GradingService) ListResults(ctx context.Context) ([]model.Result, error) {
	return s.Results.List(ctx)
}

func (s *GradingService) ListResultsByUser(ctx context.Context, userID uint) ([]model.Result, error) {
	return s.Results.ListByUser(ctx, userID)
}
