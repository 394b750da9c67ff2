package model

type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// swagger:model Question
type Question struct {
	BaseModel
	TestID        uint   `gorm:"index;not null" json:"testId"`
	QuestionText  string `gorm:"type:text;not null" json:"questionText"`
	OptionA       string `gorm:"size:500" json:"optionA"`
	OptionB       string `gorm:"size:500" json:"optionB"`
	OptionC       string `gorm:"size:500" json:"optionC"`
	OptionD       string `gorm:"size:500" json:"optionD"`
	CorrectOption Option `gorm:"size:1;not null" json:"correctOption"`
}

func (Question) TableName() string {
	return "questions"
}
