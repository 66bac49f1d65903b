package service

import (
	"errors"

	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/internal/repository"
	"quiz_platform_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) Profile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// TouchLastSeen 刷新最近活跃时间,由中间件异步调用,失败不影响请求
func (s *UserService) TouchLastSeen(userID uint) error {
	return s.UserRepo.UpdateLastSeen(userID)
}
