package resume

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const pdfHeader = "%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestOpenValidPDF(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "cv.pdf", []byte(pdfHeader))

	file, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Name != "cv.pdf" || file.Size != int64(len(pdfHeader)) {
		t.Fatalf("unexpected file: %+v", file)
	}
}

func TestOpenRejectsOversizedFileBeforeReading(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "big.pdf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	// Sparse 6 MB file: no PDF header, so only the size check can reject it
	// with ErrTooLarge.
	if err := f.Truncate(6 << 20); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	f.Close()

	_, err = Open(path)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int64
		head []byte
		want error
	}{
		{name: "pdf", size: 1024, head: []byte(pdfHeader)},
		{name: "exactly at limit", size: MaxFileSize, head: []byte(pdfHeader)},
		{name: "over limit", size: MaxFileSize + 1, head: []byte(pdfHeader), want: ErrTooLarge},
		{name: "empty", size: 0, want: ErrEmpty},
		{name: "plain text", size: 10, head: []byte("hello world"), want: ErrNotPDF},
		{name: "docx zip", size: 10, head: []byte("PK\x03\x04\x14\x00\x06\x00"), want: ErrNotPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.size, tt.head)
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOpenRejectsNonPDF(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "cv.pdf", []byte("just text pretending to be a pdf"))
	if _, err := Open(path); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestProfileIsSet(t *testing.T) {
	t.Parallel()

	var nilProfile *Profile
	if nilProfile.IsSet() {
		t.Fatal("nil profile must not be set")
	}
	if (&Profile{Name: "cv.pdf", Text: "  "}).IsSet() {
		t.Fatal("blank text must not count as set")
	}
	if !(&Profile{Name: "cv.pdf", Text: "Go"}).IsSet() {
		t.Fatal("expected profile to be set")
	}
}
