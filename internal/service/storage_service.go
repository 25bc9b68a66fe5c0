package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"stem_dashboard/internal/config"
	"stem_dashboard/internal/util"
	"stem_dashboard/pkg/tracing"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 只读的静态文档来源（课程目录等）
type StorageProvider interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Describe(name string) string
}

// HTTPStorageProvider name 为空时直接取 URL，否则相对 URL 解析
type HTTPStorageProvider struct {
	URL    string
	Client *http.Client
}

func (p *HTTPStorageProvider) target(name string) string {
	if name == "" {
		return p.URL
	}
	return p.URL + name
}

func (p *HTTPStorageProvider) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target(name), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", util.MimeJSON)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", p.target(name), resp.Status)
	}
	return resp.Body, nil
}

func (p *HTTPStorageProvider) Describe(name string) string {
	return p.target(name)
}

// LocalStorageProvider 本地文件
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) path(name string) string {
	return filepath.Join(p.Config.LocalPath, name)
}

func (p *LocalStorageProvider) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return os.Open(p.path(name))
}

func (p *LocalStorageProvider) Describe(name string) string {
	return "file://" + p.path(name)
}

// MinioStorageProvider MinIO 对象
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

func (p *MinioStorageProvider) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := p.Client.GetObject(ctx, p.Config.MinioBucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject 是惰性的，Stat 提前暴露对象不存在等错误
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

func (p *MinioStorageProvider) Describe(name string) string {
	return "minio://" + p.Config.MinioBucket + "/" + name
}

// OSSStorageProvider 阿里云 OSS 对象
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

func (p *OSSStorageProvider) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return nil, err
	}
	return bucket.GetObject(name, oss.WithContext(ctx))
}

func (p *OSSStorageProvider) Describe(name string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, name)
}

// StorageService 按配置选择文档来源
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	var provider StorageProvider
	switch cfg.Catalog.Source {
	case util.StorageHTTP:
		provider = &HTTPStorageProvider{
			URL:    cfg.Catalog.URL,
			Client: &http.Client{Transport: tracing.Transport(nil)},
		}
	case util.StorageLocal:
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		provider = p
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("%w: %q", util.ErrUnknownStorageSource, cfg.Catalog.Source)
	}

	return &StorageService{Provider: provider}, nil
}

func (s *StorageService) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.Provider.Open(ctx, name)
}

func (s *StorageService) Describe(name string) string {
	return s.Provider.Describe(name)
}
