package service

import (
	"context"
	"errors"
	"quiz_backend/internal/model"
	"quiz_backend/internal/util"
	"strings"
	"testing"
)

const sampleBank = `
tests:
  - title: Math 101
    description: basic arithmetic
    duration: 2
    questions:
      - text: "1 + 1 = ?"
        options: {A: "2", B: "3", C: "4", D: "5"}
        answer: A
      - text: "2 + 2 = ?"
        options: {A: "3", B: "4", C: "5", D: "6"}
        answer: b
  - title: Empty
    duration: 5
`

func TestParseAndImportQuestionBank(t *testing.T) {
	bank, err := ParseQuestionBank(strings.NewReader(sampleBank))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(bank.Tests) != 2 || len(bank.Tests[0].Questions) != 2 {
		t.Fatalf("bank = %+v", bank)
	}

	f := newFixture(t)
	ctx := context.Background()
	tests, questions, err := ImportQuestionBank(ctx, f.tests, bank)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if tests != 2 || questions != 2 {
		t.Fatalf("imported %d tests / %d questions", tests, questions)
	}

	summaries, _ := f.tests.ListTests(ctx)
	detail, err := f.tests.GetTestDetail(ctx, summaries[0].Test.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Summary.EffectiveDuration != 4 || detail.Questions[1].CorrectOption != model.OptionB {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestParseQuestionBankRejectsBadAnswer(t *testing.T) {
	_, err := ParseQuestionBank(strings.NewReader(`
tests:
  - title: Bad
    questions:
      - text: "?"
        answer: E
`))
	if !errors.Is(err, util.ErrInvalidOption) {
		t.Fatalf("err = %v, want invalid option", err)
	}

	_, err = ParseQuestionBank(strings.NewReader("tests:\n  - duration: 1\n"))
	if !errors.Is(err, util.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestImportQuestionBankRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bank := &QuestionBank{Tests: []BankTest{
		{Title: "First", Duration: 1, Questions: []BankQuestion{
			{Text: "1 + 1 = ?", Options: map[string]string{"A": "2"}, Answer: "A"},
		}},
		{Title: "Broken", Duration: -1},
	}}

	tests, questions, err := ImportQuestionBank(ctx, f.tests, bank)
	if !errors.Is(err, util.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
	if tests != 0 || questions != 0 {
		t.Fatalf("imported %d tests / %d questions, want 0 / 0", tests, questions)
	}

	summaries, err := f.tests.ListTests(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("tests after failed import = %+v, want none", summaries)
	}
}
