package service

import (
	"context"
	"fmt"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/tracing"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// TestService 试卷编排：创建试卷、添加题目、列表与详情
type TestService struct {
	DB        *gorm.DB
	Tests     *repository.TestRepository
	Questions *repository.QuestionRepository
	Results   *repository.ResultRepository
}

func NewTestService(db *gorm.DB, tests *repository.TestRepository, questions *repository.QuestionRepository, results *repository.ResultRepository) *TestService {
	return &TestService{
		DB:        db,
		Tests:     tests,
		Questions: questions,
		Results:   results,
	}
}

// WithTx 返回绑定到事务的副本，内部事务以保存点方式嵌套
func (s *TestService) WithTx(tx *gorm.DB) *TestService {
	return &TestService{
		DB:        tx,
		Tests:     s.Tests.WithTx(tx),
		Questions: s.Questions.WithTx(tx),
		Results:   s.Results.WithTx(tx),
	}
}

type TestSummary struct {
	Test              model.Test
	QuestionCount     int
	EffectiveDuration int64
}

type TestDetail struct {
	Summary   TestSummary
	Questions []model.Question
}

type QuestionInput struct {
	QuestionText  string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption model.Option
}

// EffectiveDuration 配置的时长是每题时长，展示时乘以题目数量，不落库
func EffectiveDuration(duration int64, questionCount int) int64 {
	return duration * int64(questionCount)
}

func summarize(test model.Test, questionCount int) TestSummary {
	test.Questions = nil
	return TestSummary{
		Test:              test,
		QuestionCount:     questionCount,
		EffectiveDuration: EffectiveDuration(test.Duration, questionCount),
	}
}

func (s *TestService) CreateTest(ctx context.Context, title, description string, duration int64) (*model.Test, error) {
	ctx, span := tracing.StartSpan(ctx, "TestService.CreateTest")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if strings.TrimSpace(title) == "" {
		err = fmt.Errorf("%w: title is required", util.ErrInvalidArgument)
		return nil, err
	}
	if duration < 0 {
		err = fmt.Errorf("%w: duration must not be negative", util.ErrInvalidArgument)
		return nil, err
	}

	test := &model.Test{
		Title:       title,
		Description: description,
		Duration:    duration,
	}
	if err = s.Tests.Create(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) AddQuestion(ctx context.Context, testID uint, in QuestionInput) (*model.Question, error) {
	ctx, span := tracing.StartSpan(ctx, "TestService.AddQuestion", attribute.Int64("test.id", int64(testID)))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if strings.TrimSpace(in.QuestionText) == "" {
		err = fmt.Errorf("%w: question text is required", util.ErrInvalidArgument)
		return nil, err
	}
	if !in.CorrectOption.Valid() {
		err = util.ErrInvalidOption
		return nil, err
	}

	question := &model.Question{
		TestID:        testID,
		QuestionText:  in.QuestionText,
		OptionA:       in.OptionA,
		OptionB:       in.OptionB,
		OptionC:       in.OptionC,
		OptionD:       in.OptionD,
		CorrectOption: in.CorrectOption,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Tests.WithTx(tx).LockByID(ctx, testID); err != nil {
			return err
		}
		return s.Questions.WithTx(tx).Create(ctx, question)
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *TestService) ListTests(ctx context.Context) ([]TestSummary, error) {
	var rows []repository.TestListRow
	// 同一事务内读取试卷与题目数，保证快照一致
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rows, err = s.Tests.WithTx(tx).ListWithQuestionCount(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]TestSummary, len(rows))
	for i, row := range rows {
		summaries[i] = summarize(row.Test, int(row.QuestionCount))
	}
	return summaries, nil
}

// GetTestDetail 返回试卷及全部题目（含正确答案），试卷不存在时返回 NotFound
func (s *TestService) GetTestDetail(ctx context.Context, testID uint) (*TestDetail, error) {
	test, err := s.Tests.FindWithQuestions(ctx, testID)
	if err != nil {
		return nil, err
	}

	questions := test.Questions
	if questions == nil {
		questions = []model.Question{}
	}
	return &TestDetail{
		Summary:   summarize(*test, len(questions)),
		Questions: questions,
	}, nil
}

// DeleteTest 级联删除题目；已有成绩的试卷不允许删除
func (s *TestService) DeleteTest(ctx context.Context, testID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Tests.WithTx(tx).LockByID(ctx, testID); err != nil {
			return err
		}
		if err := s.ensureNoResults(ctx, tx, testID); err != nil {
			return err
		}
		return s.Tests.WithTx(tx).Delete(ctx, testID)
	})
}

func (s *TestService) DeleteQuestion(ctx context.Context, questionID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.Questions.WithTx(tx).FindByID(ctx, questionID)
		if err != nil {
			return err
		}
		if _, err := s.Tests.WithTx(tx).LockByID(ctx, q.TestID); err != nil {
			return err
		}
		if err := s.ensureNoResults(ctx, tx, q.TestID); err != nil {
			return err
		}
		return s.Questions.WithTx(tx).Delete(ctx, questionID)
	})
}

func (s *TestService) ensureNoResults(ctx context.Context, tx *gorm.DB, testID uint) error {
	n, err := s.Results.WithTx(tx).CountByTest(ctx, testID)
	if err != nil {
		return err
	}
	if n > 0 {
		return util.ErrTestHasResults
	}
	return nil
}
