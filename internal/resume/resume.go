package resume

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxFileSize is the largest resume accepted for upload.
	MaxFileSize int64 = 5 << 20
	ContentType       = "application/pdf"

	sniffLen = 512
)

var (
	ErrNotPDF   = errors.New("only PDF resumes are supported")
	ErrTooLarge = fmt.Errorf("resume must not exceed %d MB", MaxFileSize>>20)
	ErrEmpty    = errors.New("resume file is empty")
)

// Profile is the resume currently in use: its file name and the text the
// server extracted from it.
type Profile struct {
	Name string
	Text string
}

func (p *Profile) IsSet() bool {
	return p != nil && strings.TrimSpace(p.Text) != ""
}

// File is a resume that passed the client-side checks.
type File struct {
	Name    string
	Size    int64
	Content []byte
}

// Reader returns a fresh reader over the file content.
func (f *File) Reader() *bytes.Reader {
	return bytes.NewReader(f.Content)
}

// Validate checks the size limit and the sniffed content type.
func Validate(size int64, head []byte) error {
	if err := checkSize(size); err != nil {
		return err
	}
	return checkType(head)
}

func checkSize(size int64) error {
	if size <= 0 {
		return ErrEmpty
	}
	if size > MaxFileSize {
		return ErrTooLarge
	}
	return nil
}

func checkType(head []byte) error {
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if detected := http.DetectContentType(head); detected != ContentType {
		return fmt.Errorf("%w: detected %s", ErrNotPDF, detected)
	}

	return nil
}

// Open reads and validates the resume at path. The size is checked from file
// metadata before any content is read.
func Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat resume: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("resume %q is a directory", path)
	}

	if err := checkSize(info.Size()); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}

	if err := Validate(int64(len(data)), data); err != nil {
		return nil, err
	}

	return &File{
		Name:    filepath.Base(path),
		Size:    int64(len(data)),
		Content: data,
	}, nil
}
