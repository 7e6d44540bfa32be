package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/campusly/campusly/internal/pkg/logger"
	"github.com/google/uuid"
)

// DefaultMaxFileSize caps uploads at 10 MiB
const DefaultMaxFileSize int64 = 10 << 20

// DefaultAllowedExtensions covers scanned documents and photos
var DefaultAllowedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath    string
	baseURL     string
	maxSize     int64
	allowedExts map[string]bool
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
// baseURL is optional; if provided, it is prepended to returned file URLs.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	allowed := make(map[string]bool, len(DefaultAllowedExtensions))
	for _, ext := range DefaultAllowedExtensions {
		allowed[ext] = true
	}

	return &LocalStorage{
		basePath:    basePath,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxSize:     DefaultMaxFileSize,
		allowedExts: allowed,
	}, nil
}

// SaveFile saves a file under subPath with a collision-free name
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file provided")
	}
	if fileHeader.Size > ls.maxSize {
		return nil, ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !ls.allowedExts[ext] {
		return nil, ErrUnsupportedType
	}

	subPath = filepath.Clean("/" + subPath)[1:]

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	dir := filepath.Join(ls.basePath, subPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	storedName := uuid.New().String() + ext
	dstPath := filepath.Join(dir, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	relPath := path.Join(filepath.ToSlash(subPath), storedName)
	url := path.Join("/uploads", relPath)
	if ls.baseURL != "" {
		url = ls.baseURL + "/" + relPath
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", relPath).Msg("File saved successfully")
	return &FileInfo{
		StoragePath:  relPath,
		URL:          url,
		OriginalName: filepath.Base(fileHeader.Filename),
		FileSize:     written,
		MimeType:     mimeType,
	}, nil
}

// DeleteFile removes a stored file. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(storagePath string) error {
	clean := filepath.Clean("/" + storagePath)[1:]
	if clean == "" {
		return fmt.Errorf("invalid storage path")
	}
	if err := os.Remove(filepath.Join(ls.basePath, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
