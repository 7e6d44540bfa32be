package filestorage

import (
	"errors"
	"mime/multipart"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured size limit
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
	// ErrUnsupportedType is returned for extensions outside the allow-list
	ErrUnsupportedType = errors.New("file type is not allowed")
)

// FileInfo represents information about a stored file
type FileInfo struct {
	StoragePath  string // Path relative to the storage root
	URL          string // Public path or URL of the file
	OriginalName string // Name the client uploaded
	FileSize     int64  // Size in bytes
	MimeType     string
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile stores the upload under subPath and returns where it went
	SaveFile(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error)

	// DeleteFile removes a stored file by its storage path
	DeleteFile(storagePath string) error
}
