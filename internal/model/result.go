package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Result 一次提交的评分结果，创建后不再修改。
// TestID / UserID 只保存引用，题目后续变化不影响已有结果。
// swagger:model Result
type Result struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TestID         uint           `gorm:"index;not null" json:"testId"`
	UserID         uint           `gorm:"index;not null" json:"userId"`
	TotalQuestions int            `gorm:"not null" json:"totalQuestions"`
	CorrectAnswers int            `gorm:"not null" json:"correctAnswers"`
	Percentage     float64        `gorm:"not null" json:"percentage"`
	Responses      datatypes.JSON `json:"responses"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
}

func (Result) TableName() string {
	return "results"
}

func (r *Result) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = GenerateUUID()
	}
	return
}

// Response 考生对单道题的作答
type Response struct {
	QuestionID     uint   `json:"questionId"`
	SelectedOption Option `json:"selectedOption"`
}
