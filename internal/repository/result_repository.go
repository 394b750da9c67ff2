package repository

import (
	"context"
	"quiz_backend/internal/model"

	"gorm.io/gorm"
)

// ResultRepository 结果只追加，不提供更新和删除
type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) WithTx(tx *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: tx}
}

func (r *ResultRepository) Create(ctx context.Context, result *model.Result) error {
	return r.DB.WithContext(ctx).Create(result).Error
}

func (r *ResultRepository) List(ctx context.Context) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.WithContext(ctx).Order("created_at asc, id asc").Find(&results).Error
	return results, err
}

func (r *ResultRepository) ListByUser(ctx context.Context, userID uint) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) CountByTest(ctx context.Context, testID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Result{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}

type BestScoreRow struct {
	UserID     uint
	Percentage float64
}

// TopByTest 每个用户取最高分，按分数降序
func (r *ResultRepository) TopByTest(ctx context.Context, testID uint, limit int) ([]BestScoreRow, error) {
	var rows []BestScoreRow
	err := r.DB.WithContext(ctx).Model(&model.Result{}).
		Select("user_id, MAX(percentage) as percentage").
		Where("test_id = ?", testID).
		Group("user_id").
		Order("percentage desc, user_id asc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
