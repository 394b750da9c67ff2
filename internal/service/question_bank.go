package service

import (
	"context"
	"fmt"
	"io"
	"quiz_backend/internal/model"
	"quiz_backend/internal/util"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// QuestionBank 题库文件格式：
//
//	tests:
//	  - title: Math 101
//	    description: basic arithmetic
//	    duration: 2
//	    questions:
//	      - text: "2 + 2 = ?"
//	        options: {A: "3", B: "4", C: "5", D: "6"}
//	        answer: B
type QuestionBank struct {
	Tests []BankTest `yaml:"tests"`
}

type BankTest struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Duration    int64          `yaml:"duration"`
	Questions   []BankQuestion `yaml:"questions"`
}

type BankQuestion struct {
	Text    string            `yaml:"text"`
	Options map[string]string `yaml:"options"`
	Answer  string            `yaml:"answer"`
}

func (q BankQuestion) input() QuestionInput {
	return QuestionInput{
		QuestionText:  q.Text,
		OptionA:       q.Options["A"],
		OptionB:       q.Options["B"],
		OptionC:       q.Options["C"],
		OptionD:       q.Options["D"],
		CorrectOption: model.Option(strings.ToUpper(strings.TrimSpace(q.Answer))),
	}
}

func ParseQuestionBank(r io.Reader) (*QuestionBank, error) {
	var bank QuestionBank
	if err := yaml.NewDecoder(r).Decode(&bank); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	for i, t := range bank.Tests {
		if strings.TrimSpace(t.Title) == "" {
			return nil, fmt.Errorf("%w: test #%d has no title", util.ErrInvalidArgument, i+1)
		}
		for j, q := range t.Questions {
			if strings.TrimSpace(q.Text) == "" {
				return nil, fmt.Errorf("%w: %s question #%d has no text", util.ErrInvalidArgument, t.Title, j+1)
			}
			if !q.input().CorrectOption.Valid() {
				return nil, fmt.Errorf("%w: %s question #%d answer %q", util.ErrInvalidOption, t.Title, j+1, q.Answer)
			}
		}
	}
	return &bank, nil
}

// ImportQuestionBank 在一个事务内创建全部试卷与题目，任一失败则整体回滚，
// 返回创建的试卷数与题目数
func ImportQuestionBank(ctx context.Context, tests *TestService, bank *QuestionBank) (int, int, error) {
	testCount, questionCount := 0, 0
	err := tests.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txTests := tests.WithTx(tx)
		for _, bt := range bank.Tests {
			test, err := txTests.CreateTest(ctx, bt.Title, bt.Description, bt.Duration)
			if err != nil {
				return fmt.Errorf("import %q: %w", bt.Title, err)
			}
			testCount++

			for _, bq := range bt.Questions {
				if _, err := txTests.AddQuestion(ctx, test.ID, bq.input()); err != nil {
					return fmt.Errorf("import %q: %w", bt.Title, err)
				}
				questionCount++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return testCount, questionCount, nil
}
