package repository

import (
	"context"
	"quiz_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) WithTx(tx *gorm.DB) *TestRepository {
	return &TestRepository{DB: tx}
}

func (r *TestRepository) Create(ctx context.Context, test *model.Test) error {
	return r.DB.WithContext(ctx).Create(test).Error
}

func (r *TestRepository) FindByID(ctx context.Context, id uint) (*model.Test, error) {
	var test model.Test
	if err := r.DB.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, notFound(err, "Test")
	}
	return &test, nil
}

// LockByID 在事务内对试卷行加写锁，结构修改（加题、删题、删卷）使用
func (r *TestRepository) LockByID(ctx context.Context, id uint) (*model.Test, error) {
	return r.findLocked(ctx, id, "UPDATE")
}

// ShareLockByID 评分时加共享锁：同一试卷的多次提交可并行，但与结构修改互斥
func (r *TestRepository) ShareLockByID(ctx context.Context, id uint) (*model.Test, error) {
	return r.findLocked(ctx, id, "SHARE")
}

func (r *TestRepository) findLocked(ctx context.Context, id uint, strength string) (*model.Test, error) {
	var test model.Test
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: strength}).
		First(&test, id).Error
	if err != nil {
		return nil, notFound(err, "Test")
	}
	return &test, nil
}

// FindWithQuestions 预加载题目，题目按创建顺序排列
func (r *TestRepository) FindWithQuestions(ctx context.Context, id uint) (*model.Test, error) {
	var test model.Test
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id asc")
		}).
		First(&test, id).Error
	if err != nil {
		return nil, notFound(err, "Test")
	}
	return &test, nil
}

type TestListRow struct {
	model.Test
	QuestionCount int64
}

func (r *TestRepository) ListWithQuestionCount(ctx context.Context) ([]TestListRow, error) {
	var tests []model.Test
	if err := r.DB.WithContext(ctx).Order("id asc").Find(&tests).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		TestID uint
		Total  int64
	}
	err := r.DB.WithContext(ctx).Model(&model.Question{}).
		Select("test_id, COUNT(*) as total").
		Group("test_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	countMap := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countMap[c.TestID] = c.Total
	}

	rows := make([]TestListRow, len(tests))
	for i, t := range tests {
		rows[i] = TestListRow{Test: t, QuestionCount: countMap[t.ID]}
	}
	return rows, nil
}

func (r *TestRepository) Delete(ctx context.Context, id uint) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("test_id = ?", id).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Test{}, id).Error
}
