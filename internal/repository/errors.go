package repository

import (
	"errors"
	"quiz_backend/internal/util"

	"gorm.io/gorm"
)

// notFound 将 gorm 的 ErrRecordNotFound 转换为带实体类型的领域错误
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.NewNotFound(entity)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, util.ErrNotFound)
}
