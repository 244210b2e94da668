package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/pkg/logger"
)

// Image types the editor is allowed to upload
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadService editor image uploads
type UploadService interface {
	SaveImage(file *multipart.FileHeader) (string, error)
}

type uploadService struct {
	dir        string
	publicPath string
	maxSize    int64
}

// NewUploadService stores uploads under dir and returns URLs rooted at
// publicPath. maxSizeMB bounds a single file.
func NewUploadService(dir, publicPath string, maxSizeMB int64) UploadService {
	return &uploadService{
		dir:        dir,
		publicPath: strings.TrimSuffix(publicPath, "/"),
		maxSize:    maxSizeMB << 20,
	}
}

// SaveImage writes the upload to disk under a random name and returns
// its public URL
func (s *uploadService) SaveImage(file *multipart.FileHeader) (string, error) {
	if file.Size > s.maxSize {
		return "", common.ErrInvalidInput
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", common.ErrInvalidInput
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.dir, name)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", err
	}

	logger.Info("stored upload %s (%d bytes)", name, file.Size)
	return fmt.Sprintf("%s/%s", s.publicPath, name), nil
}
