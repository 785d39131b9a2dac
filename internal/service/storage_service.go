package service

import (
	"college_survey_backend/internal/config"
	"college_survey_backend/internal/util"
	"college_survey_backend/pkg/logger"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider stores generated files such as result exports.
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	// DeletePrefix removes every stored file whose name starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	GetURL(filename string) string
}

// LocalExportRoute serves files of the local provider behind admin auth.
const LocalExportRoute = "/api/admin/exports/"

type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst, err := p.Path(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
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

func (p *LocalStorageProvider) DeletePrefix(ctx context.Context, prefix string) error {
	path, err := p.Path(prefix)
	if err != nil {
		return err
	}
	return os.RemoveAll(path)
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return LocalExportRoute + filename
}

// Path resolves a stored name to its file, refusing names that leave the
// storage directory.
func (p *LocalStorageProvider) Path(filename string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(filename))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("empty storage path %q", filename)
	}
	return filepath.Join(p.Config.LocalPath, clean), nil
}

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

func (p *MinioStorageProvider) DeletePrefix(ctx context.Context, prefix string) error {
	objects := p.Client.ListObjects(ctx, p.Config.MinioBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return object.Err
		}
		if err := p.Client.RemoveObject(ctx, p.Config.MinioBucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	scheme := "http"
	if p.Config.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.Config.MinioEndpoint, p.Config.MinioBucket, filename)
}

type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(filename, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *OSSStorageProvider) DeletePrefix(ctx context.Context, prefix string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	options := []oss.Option{oss.Prefix(prefix)}
	for {
		page, err := bucket.ListObjectsV2(options...)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(page.Objects))
		for _, object := range page.Objects {
			keys = append(keys, object.Key)
		}
		if len(keys) > 0 {
			if _, err := bucket.DeleteObjects(keys, oss.DeleteObjectsQuiet(true)); err != nil {
				return err
			}
		}
		if !page.IsTruncated {
			return nil
		}
		options = []oss.Option{oss.Prefix(prefix), oss.ContinuationToken(page.NextContinuationToken)}
	}
}

func (p *OSSStorageProvider) GetURL(filename string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, filename)
}

type StorageService struct {
	Provider StorageProvider
}

// NewStorageService picks the configured provider and falls back to the local
// disk when a remote client cannot be built.
func NewStorageService(cfg *config.StorageConfig) *StorageService {
	var provider StorageProvider
	switch cfg.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(cfg)
		if err != nil {
			logger.Log.Warn("MinIO unavailable, using local storage", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(cfg)
		if err != nil {
			logger.Log.Warn("OSS unavailable, using local storage", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: cfg}
	}
	return &StorageService{Provider: provider}
}

func (s *StorageService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if s == nil || s.Provider == nil {
		return "", util.ErrStorageNotAvailable
	}
	return s.Provider.Upload(ctx, filename, reader, size, contentType)
}

func (s *StorageService) DeletePrefix(ctx context.Context, prefix string) error {
	if s == nil || s.Provider == nil {
		return util.ErrStorageNotAvailable
	}
	return s.Provider.DeletePrefix(ctx, prefix)
}

// LocalPath returns the file behind a stored name when files live on local disk.
func (s *StorageService) LocalPath(filename string) (string, bool) {
	if s == nil {
		return "", false
	}
	local, ok := s.Provider.(*LocalStorageProvider)
	if !ok {
		return "", false
	}
	path, err := local.Path(filename)
	if err != nil {
		return "", false
	}
	return path, true
}
