package model

// Test 试卷，Duration 为每道题的作答时长（分钟）
// swagger:model Test
type Test struct {
	BaseModel
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Duration    int64      `gorm:"default:0" json:"duration"`
	Questions   []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}
