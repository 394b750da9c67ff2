package service

import (
	"context"
	"errors"
	"quiz_backend/internal/config"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// UserService 处理用户相关的业务逻辑
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

// EnsureAdmin 不存在管理员时创建默认管理员，进程启动时调用一次。
// 已存在任意 ADMIN 时不做任何修改。
func (s *UserService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	_, err := s.UserRepo.FindFirstByRole(ctx, model.Admin)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	admin := &model.User{
		Name:     cfg.Name,
		Email:    cfg.Email,
		Password: string(hashed),
		Role:     model.Admin,
	}
	if err := s.UserRepo.Create(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
