package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"quiz_platform_backend/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 题干配图等附件的存储抽象
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}

// LocalStorageProvider 本地磁盘存储
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, filename string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, filename))
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/uploads/" + filename
}

// MinioStorageProvider MinIO 存储
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, filename string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, filename, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	if p.Config.BaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(p.Config.BaseURL, "/"), p.Config.MinioBucket, filename)
	}
	return "/" + p.Config.MinioBucket + "/" + filename
}

// StorageService 附件存储服务,provider 按配置选择,minio 初始化失败时回退本地盘
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == "minio" {
		if p, err := NewMinioStorageProvider(&cfg.Storage); err == nil {
			provider = p
		}
	}
	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}
	return &StorageService{Provider: provider}
}

// UploadQuestionImage 上传题干配图,文件名重新生成,杜绝路径穿越
func (s *StorageService) UploadQuestionImage(ctx context.Context, quizID uint, originalName, contentType string, reader io.Reader, size int64) (string, error) {
	ext := filepath.Ext(originalName)
	filename := fmt.Sprintf("quizzes/%d/%s%s", quizID, uuid.New().String(), ext)
	return s.Provider.Upload(ctx, filename, reader, size, contentType)
}

func (s *StorageService) Delete(ctx context.Context, filename string) error {
	return s.Provider.Delete(ctx, filename)
}
