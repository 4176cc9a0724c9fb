package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileDownloader saves documents into Dir. Bytes land in a temp file first and
// are renamed into place; the temp file never outlives a Save call.
type FileDownloader struct {
	Dir string
}

// NewFileDownloader creates a downloader writing to dir ("" means the working directory).
func NewFileDownloader(dir string) *FileDownloader {
	if dir == "" {
		dir = "."
	}
	return &FileDownloader{Dir: dir}
}

// Save writes data to Dir/filename and returns the final path.
func (fd *FileDownloader) Save(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(fd.Dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(fd.Dir, "."+filename+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}

	dest := filepath.Join(fd.Dir, filename)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("save %s: %w", filename, err)
	}
	return dest, nil
}
