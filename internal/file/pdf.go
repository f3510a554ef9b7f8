package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"
)

// PDFExtensions are the extensions accepted by the upload endpoint.
var PDFExtensions = []string{".pdf"}

var (
	// ErrNotPDF is returned when a file does not carry a .pdf extension.
	ErrNotPDF = errors.New("only PDF files are accepted")
	// ErrTooLarge is returned when a file exceeds the configured upload size.
	ErrTooLarge = errors.New("file is too large")
)

// PDFInfo describes a PDF on disk.
type PDFInfo struct {
	Path  string
	Name  string
	Size  int64
	Pages int
}

// IsPDF returns true if the filename has a .pdf extension.
func IsPDF(filename string) bool {
	return HasValidExtension(filename, PDFExtensions)
}

// InspectPDF checks that path is a readable PDF no larger than maxBytes (0 disables the limit).
// When parse is set the document is opened with a PDF reader to count its pages.
func InspectPDF(path string, maxBytes int64, parse bool) (*PDFInfo, error) {
	if !IsPDF(path) {
		return nil, ErrNotPDF
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading file info: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if maxBytes > 0 && stat.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, stat.Size(), maxBytes)
	}
	info := &PDFInfo{
		Path: path,
		Name: filepath.Base(path),
		Size: stat.Size(),
	}
	if !parse {
		return info, nil
	}

	pages, err := countPages(path)
	if err != nil {
		return nil, err
	}
	if pages == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", info.Name)
	}
	info.Pages = pages
	return info, nil
}

// countPages opens the document and reads its page count.
// The reader panics on some malformed trailers, so panics are turned into errors.
func countPages(path string) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing pdf: %v", r)
		}
	}()
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("parsing pdf: %w", err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}
