package controller

import (
	"encoding/json"
	"quiz_backend/internal/model"
	"quiz_backend/internal/service"
	"strings"
	"testing"
)

func TestPaperOmitsCorrectOption(t *testing.T) {
	detail := &service.TestDetail{
		Summary: service.TestSummary{
			Test:              model.Test{BaseModel: model.BaseModel{ID: 1}, Title: "Math 101", Duration: 2},
			QuestionCount:     1,
			EffectiveDuration: 2,
		},
		Questions: []model.Question{{
			BaseModel:     model.BaseModel{ID: 7},
			TestID:        1,
			QuestionText:  "2 + 2 = ?",
			CorrectOption: model.OptionB,
		}},
	}

	paper, err := json.Marshal(toTestPaperDTO(detail))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(paper), "correctOption") {
		t.Fatalf("paper leaks answer: %s", paper)
	}

	full := toTestDetailDTO(detail)
	if full.Questions[0].CorrectOption != model.OptionB || full.EffectiveDuration != 2 {
		t.Fatalf("detail = %+v", full)
	}
}

func TestRoundPercentage(t *testing.T) {
	cases := map[float64]float64{
		200.0 / 3: 66.67,
		100.0 / 3: 33.33,
		0:         0,
		100:       100,
	}
	for in, want := range cases {
		if got := roundPercentage(in); got != want {
			t.Errorf("roundPercentage(%v) = %v, want %v", in, got, want)
		}
	}
}
