package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/SouhailBechchari/Emsoutenance-sub000/config"
)

// ErrInvalidPath 存储路径越出根目录
var ErrInvalidPath = errors.New("invalid storage path")

// Store 上传文件存储接口，返回相对路径
type Store interface {
	Save(ctx context.Context, dir, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, relPath string) error
	URL(relPath string) string
}

// Local 本地磁盘存储（Root 目录下）
type Local struct {
	root    string
	baseURL string
	prefix  string
}

// NewLocal 创建 Local，根目录不存在时自动创建
func NewLocal(cfg *config.StorageConfig, baseURL string) (*Local, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{
		root:    cfg.Root,
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  "/" + strings.Trim(cfg.PublicPrefix, "/"),
	}, nil
}

// Root 静态文件服务的根目录
func (l *Local) Root() string { return l.root }

// PublicPrefix 静态文件的 URL 前缀
func (l *Local) PublicPrefix() string { return l.prefix }

// Save 将 r 写入 dir/<uuid><ext>；生成的文件名不会与已有文件冲突，原文件名只保留扩展名
func (l *Local) Save(ctx context.Context, dir, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	rel := path.Join(dir, uuid.NewString()+ext)

	full, err := l.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return rel, nil
}

// Remove 删除已存储的文件，文件不存在不视为错误
func (l *Local) Remove(_ context.Context, relPath string) error {
	full, err := l.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL 已存储文件的完整 URL
func (l *Local) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return l.baseURL + l.prefix + "/" + strings.TrimLeft(relPath, "/")
}

func (l *Local) resolve(relPath string) (string, error) {
	clean := path.Clean("/" + relPath)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}
