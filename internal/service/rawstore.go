package service

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fleetcollector/fleetcollector/internal/config"
	"github.com/fleetcollector/fleetcollector/pkg/logger"
)

// Archive 原始命令回显归档
type Archive interface {
	// Save 归档一条命令的回显，返回对象URI
	Save(ctx context.Context, runID, hostLabel, command, content string) (string, error)
}

// NewArchive 按配置创建归档器，未启用时返回nil
// minio后端不可用时自动回退到本地目录
func NewArchive(cfg *config.StorageConfig) Archive {
	if !cfg.Enabled {
		return nil
	}
	local := &localArchive{baseDir: cfg.LocalDir}
	if cfg.Backend != "minio" {
		return local
	}
	m := newMinioArchive(&cfg.Minio)
	if m == nil {
		logger.Warn("minio archive unavailable, falling back to local storage")
		return local
	}
	return &fallbackArchive{primary: m, fallback: local}
}

var slugRegex = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// slug 将命令或主机名转为安全的路径片段
func slug(s string) string {
	s = strings.TrimSpace(s)
	s = slugRegex.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "output"
	}
	return s
}

// objectName 归档路径：runID/主机/命令.txt
func objectName(runID, hostLabel, command string) string {
	return path.Join(runID, slug(hostLabel), slug(command)+".txt")
}

// localArchive 本地文件归档
type localArchive struct {
	baseDir string
}

func (a *localArchive) Save(ctx context.Context, runID, hostLabel, command, content string) (string, error) {
	fullPath := filepath.Join(a.baseDir, filepath.FromSlash(objectName(runID, hostLabel, command)))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive dir: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}
	return "file://" + fullPath, nil
}

// minioArchive 对象存储归档
type minioArchive struct {
	client        *minio.Client
	bucket        string
	endpoint      string
	bucketEnsured bool
}

func newMinioArchive(cfg *config.MinioConfig) *minioArchive {
	host := strings.TrimSpace(cfg.Host)
	if host == "" || cfg.Port <= 0 {
		logger.Warn("minio configuration incomplete, host/port missing")
		return nil
	}
	endpoint := fmt.Sprintf("%s:%d", host, cfg.Port)

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.Secure,
		Transport: transport,
	})
	if err != nil {
		logger.Errorf("minio client initialization failed: %v", err)
		return nil
	}

	a := &minioArchive{client: client, bucket: strings.TrimSpace(cfg.Bucket), endpoint: endpoint}
	if a.bucket == "" {
		logger.Warn("minio bucket not configured")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.ensureBucket(ctx); err != nil {
		logger.Warnf("minio bucket check at init failed: %v", err)
	} else {
		a.bucketEnsured = true
	}
	return a
}

func (a *minioArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
}

func (a *minioArchive) Save(ctx context.Context, runID, hostLabel, command, content string) (string, error) {
	if !a.bucketEnsured {
		if err := a.ensureBucket(ctx); err != nil {
			return "", fmt.Errorf("minio ensure bucket failed: %w", err)
		}
		a.bucketEnsured = true
	}

	name := objectName(runID, hostLabel, command)
	data := []byte(content)
	_, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return "", fmt.Errorf("minio put object failed: %w", err)
	}
	return "minio://" + path.Join(a.bucket, name), nil
}

// fallbackArchive 主后端失败时回退到备用后端
type fallbackArchive struct {
	primary  Archive
	fallback Archive
}

func (a *fallbackArchive) Save(ctx context.Context, runID, hostLabel, command, content string) (string, error) {
	uri, err := a.primary.Save(ctx, runID, hostLabel, command, content)
	if err == nil {
		return uri, nil
	}
	logger.Warnf("primary archive failed, using fallback: %v", err)
	return a.fallback.Save(ctx, runID, hostLabel, command, content)
}
