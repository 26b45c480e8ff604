// Package storage 封装存放简历导出文件的 MinIO/S3 Bucket。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resumeEditor/internal/config"
)

const defaultListLimit = 50

// Client 同时持有内网客户端（读写）与公网客户端（签发下载地址）。
type Client struct {
	internal *minio.Client
	public   *minio.Client
	bucket   string
}

// ObjectMeta 描述 Bucket 中对象的关键信息。
type ObjectMeta struct {
	Key          string
	Size         int64
	LastModified time.Time
}

func newMinio(endpoint string, secure bool, cfg config.StorageConfig) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
}

// NewClient 初始化客户端并确保 Bucket 存在；PublicEndpoint 为空时签名地址使用内网地址。
func NewClient(ctx context.Context, cfg config.StorageConfig) (*Client, error) {
	internal, err := newMinio(cfg.Endpoint, cfg.UseSSL, cfg)
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	public := internal
	if cfg.PublicEndpoint != "" {
		u, err := url.Parse(cfg.PublicEndpoint)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid storage public endpoint %q", cfg.PublicEndpoint)
		}
		if public, err = newMinio(u.Host, u.Scheme == "https", cfg); err != nil {
			return nil, fmt.Errorf("init public minio client: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := internal.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := internal.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{internal: internal, public: public, bucket: cfg.Bucket}, nil
}

// UploadFile 上传对象到私有 Bucket。
func (c *Client) UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	info, err := c.internal.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}
	return &info, nil
}

// GeneratePresignedURL 生成对象的限时下载链接。
func (c *Client) GeneratePresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := c.public.PresignedGetObject(ctx, c.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}
	return u.String(), nil
}

// ListObjects 列出前缀下的对象，最新的在前。
func (c *Client) ListObjects(ctx context.Context, prefix string, limit int) ([]ObjectMeta, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []ObjectMeta
	for obj := range c.internal.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, obj.Err)
		}
		out = append(out, ObjectMeta{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	SortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeletePrefix 删除前缀下的全部对象，已不存在的对象忽略。
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	objects := c.internal.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	for res := range c.internal.RemoveObjects(ctx, c.bucket, objects, minio.RemoveObjectsOptions{}) {
		if res.Err != nil && !isNoSuchKey(res.Err) {
			return fmt.Errorf("remove %q: %w", res.ObjectName, res.Err)
		}
	}
	return nil
}

// SortNewestFirst 按修改时间倒序，时间相同时按 key 倒序。
func SortNewestFirst(objects []ObjectMeta) {
	sort.Slice(objects, func(i, j int) bool {
		if !objects[i].LastModified.Equal(objects[j].LastModified) {
			return objects[i].LastModified.After(objects[j].LastModified)
		}
		return objects[i].Key > objects[j].Key
	})
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
