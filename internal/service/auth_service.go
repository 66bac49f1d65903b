package service

import (
	"errors"

	"quiz_platform_backend/internal/config"
	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/internal/repository"
	"quiz_platform_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Config   *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{UserRepo: userRepo, Config: cfg}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register 注册新用户,默认 student 角色
func (s *AuthService) Register(in *RegisterInput) (*AuthResult, error) {
	if _, err := s.UserRepo.FindByEmail(in.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     model.Student,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login 邮箱密码登录。用户不存在和密码错误返回同一个错误,
// 不向外泄露邮箱是否已注册。
func (s *AuthService) Login(in *LoginInput) (*AuthResult, error) {
	user, err := s.UserRepo.FindByEmail(in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
