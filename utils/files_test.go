package utils

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(old) })
	EnsureUploadDirs()
}

func fileHeader(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File[field][0]
}

func TestStoreLeadFilePDF(t *testing.T) {
	chdirTemp(t)

	fh := fileHeader(t, "aadhaarPdf", "aadhaar.pdf", "application/pdf", []byte("%PDF-1.4"))
	publicPath, err := StoreLeadFile(fh, "aadhaarPdf")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(publicPath, "/uploads/leads/documents/aadhaarPdf-"))
	require.True(t, strings.HasSuffix(publicPath, ".pdf"))

	// The stored file exists at the path the public URL maps to
	_, err = os.Stat(filepath.FromSlash(strings.TrimPrefix(publicPath, "/")))
	require.NoError(t, err)
}

func TestStoreLeadFileImageField(t *testing.T) {
	chdirTemp(t)

	fh := fileHeader(t, "clientImage", "photo.png", "image/png", []byte("png-bytes"))
	publicPath, err := StoreLeadFile(fh, "clientImage")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(publicPath, "/uploads/leads/images/clientImage-"))
}

func TestStoreLeadFileRejectsWrongType(t *testing.T) {
	chdirTemp(t)

	fh := fileHeader(t, "panPdf", "pan.png", "image/png", []byte("png-bytes"))
	_, err := StoreLeadFile(fh, "panPdf")
	require.Error(t, err)
	require.Contains(t, err.Error(), "only PDF files are allowed")

	fh = fileHeader(t, "clientImage", "photo.pdf", "application/pdf", []byte("%PDF-1.4"))
	_, err = StoreLeadFile(fh, "clientImage")
	require.Error(t, err)
	require.Contains(t, err.Error(), "only image files")
}

func TestDeleteLocalFile(t *testing.T) {
	chdirTemp(t)

	fh := fileHeader(t, "billDoc", "bill.pdf", "application/pdf", []byte("%PDF-1.4"))
	publicPath, err := StoreLeadFile(fh, "billDoc")
	require.NoError(t, err)

	rel := filepath.FromSlash(strings.TrimPrefix(publicPath, "/"))
	DeleteLocalFile(publicPath)
	_, err = os.Stat(rel)
	require.True(t, os.IsNotExist(err))

	// Paths outside uploads/ are never touched
	outside := filepath.Join(".", "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	DeleteLocalFile("/keep.txt")
	_, err = os.Stat(outside)
	require.NoError(t, err)

	// Missing and empty paths are a no-op
	DeleteLocalFile("/uploads/leads/documents/gone.pdf")
	DeleteLocalFile("")
}
