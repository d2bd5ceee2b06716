package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTypeAndSize(t *testing.T) {
	v := NewValidator(0)
	cases := []struct {
		name string
		c    UploadCandidate
		want error
	}{
		{"pdf within limit", UploadCandidate{Name: "plan.pdf", SizeBytes: 2_300_000, MimeType: MimePDF}, nil},
		{"docx at limit", UploadCandidate{Name: "plan.docx", SizeBytes: DefaultMaxBytes, MimeType: MimeDOCX}, nil},
		{"pdf with params", UploadCandidate{Name: "plan.pdf", SizeBytes: 10, MimeType: "application/pdf; name=plan.pdf"}, nil},
		{"one byte over", UploadCandidate{Name: "plan.pdf", SizeBytes: DefaultMaxBytes + 1, MimeType: MimePDF}, ErrFileTooLarge},
		{"exe", UploadCandidate{Name: "plan.exe", SizeBytes: 10, MimeType: "application/x-msdownload"}, ErrUnsupportedType},
		{"legacy doc", UploadCandidate{Name: "plan.doc", SizeBytes: 10, MimeType: "application/msword"}, ErrUnsupportedType},
		{"type checked before size", UploadCandidate{Name: "big.exe", SizeBytes: DefaultMaxBytes * 3, MimeType: "application/x-msdownload"}, ErrUnsupportedType},
		{"missing type", UploadCandidate{Name: "plan", SizeBytes: 10}, ErrUnsupportedType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.c)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSizeCeilingFollowsConfig(t *testing.T) {
	v := NewValidator(10 << 20)
	assert.NoError(t, v.Validate(UploadCandidate{SizeBytes: 8 << 20, MimeType: MimePDF}))
	assert.ErrorIs(t, v.Validate(UploadCandidate{SizeBytes: 10<<20 + 1, MimeType: MimePDF}), ErrFileTooLarge)
	assert.Equal(t, "Datei zu groß (max. 10MB)", v.Message(ErrFileTooLarge))
}

func TestMessages(t *testing.T) {
	v := NewValidator(0)
	assert.Equal(t, "Bitte nur PDF oder DOCX Dateien hochladen", v.Message(ErrUnsupportedType))
	assert.Equal(t, "Datei zu groß (max. 5MB)", v.Message(ErrFileTooLarge))
	assert.Equal(t, "", v.Message(nil))
	assert.Equal(t, "1,5MB", Validator{MaxBytes: 3 << 19}.LimitLabel())
}

func parseFileHeader(t *testing.T, fileName, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestCandidateFromHeaderUsesDeclaredType(t *testing.T) {
	fh := parseFileHeader(t, "plan.pdf", MimePDF, []byte("not really a pdf"))
	c, err := CandidateFromHeader(fh)
	require.NoError(t, err)
	assert.Equal(t, MimePDF, c.MimeType)
	assert.Equal(t, "plan.pdf", c.Name)
	assert.Equal(t, int64(len("not really a pdf")), c.SizeBytes)
}

func TestCandidateFromHeaderSniffsOctetStream(t *testing.T) {
	fh := parseFileHeader(t, "plan.pdf", "application/octet-stream", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"))
	c, err := CandidateFromHeader(fh)
	require.NoError(t, err)
	assert.Equal(t, MimePDF, c.MimeType)
}

func TestCandidateFromHeaderSniffsExecutable(t *testing.T) {
	fh := parseFileHeader(t, "plan.exe", "", []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff"))
	c, err := CandidateFromHeader(fh)
	require.NoError(t, err)
	assert.ErrorIs(t, NewValidator(0).Validate(c), ErrUnsupportedType)
}
