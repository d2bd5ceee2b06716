package uploads

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes is the upload ceiling shared by every entry point.
const DefaultMaxBytes int64 = 5 << 20

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	mimeOctetStream = "application/octet-stream"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
)

var allowedContentTypes = map[string]struct{}{
	MimePDF:  {},
	MimeDOCX: {},
}

// UploadCandidate describes a file the visitor picked or dropped.
type UploadCandidate struct {
	Name      string
	SizeBytes int64
	MimeType  string
}

// Validator accepts PDF and DOCX files up to MaxBytes.
type Validator struct {
	MaxBytes int64
}

// NewValidator returns a Validator, using DefaultMaxBytes for a
// non-positive ceiling.
func NewValidator(maxBytes int64) Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Validator{MaxBytes: maxBytes}
}

// Validate reports the first rule c breaks, type before size.
func (v Validator) Validate(c UploadCandidate) error {
	if _, ok := allowedContentTypes[normalizeMediaType(c.MimeType)]; !ok {
		return ErrUnsupportedType
	}
	if c.SizeBytes > v.limit() {
		return ErrFileTooLarge
	}
	return nil
}

// Message returns the German text shown for a Validate error.
func (v Validator) Message(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return "Bitte nur PDF oder DOCX Dateien hochladen"
	case errors.Is(err, ErrFileTooLarge):
		return fmt.Sprintf("Datei zu groß (max. %s)", v.LimitLabel())
	case err == nil:
		return ""
	default:
		return "Bitte wähle eine gültige Datei aus"
	}
}

// LimitLabel renders the ceiling for display, e.g. "5MB".
func (v Validator) LimitLabel() string {
	return formatMegabytes(v.limit())
}

func (v Validator) limit() int64 {
	if v.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return v.MaxBytes
}

// CandidateFromHeader builds a candidate from a multipart part. Parts
// without a useful declared type are sniffed from their first bytes.
func CandidateFromHeader(fh *multipart.FileHeader) (UploadCandidate, error) {
	c := UploadCandidate{
		Name:      strings.TrimSpace(fh.Filename),
		SizeBytes: fh.Size,
		MimeType:  normalizeMediaType(fh.Header.Get("Content-Type")),
	}
	if c.MimeType != "" && c.MimeType != mimeOctetStream {
		return c, nil
	}

	f, err := fh.Open()
	if err != nil {
		return UploadCandidate{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return UploadCandidate{}, fmt.Errorf("sniff upload: %w", err)
	}
	c.MimeType = normalizeMediaType(detected.String())
	return c, nil
}

func normalizeMediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(v); err == nil {
		return mt
	}
	return strings.ToLower(v)
}

func formatMegabytes(n int64) string {
	const mb = 1 << 20
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return strings.Replace(fmt.Sprintf("%.1fMB", float64(n)/mb), ".", ",", 1)
}
