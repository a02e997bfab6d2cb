package utils

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxUploadSize = 10 << 20 // 10MB per file

var leadDocDir = filepath.Join("uploads", "leads", "documents")
var leadImgDir = filepath.Join("uploads", "leads", "images")

// EnsureUploadDirs creates the upload directory tree at startup
func EnsureUploadDirs() {
	for _, dir := range []string{leadDocDir, leadImgDir, filepath.Join("uploads", "users")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create upload directory %s: %v", dir, err)
		}
	}
}

var imageMimes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/avif": true,
}

// StoreLeadFile validates and saves one uploaded lead file, returning the
// public relative path to persist on the lead. clientImage accepts images,
// the document fields accept PDFs only.
func StoreLeadFile(fh *multipart.FileHeader, field string) (string, error) {
	if fh.Size > MaxUploadSize {
		return "", fmt.Errorf("file for %s exceeds the 10MB limit", field)
	}

	contentType := fh.Header.Get("Content-Type")
	isImage := field == "clientImage"
	if isImage {
		if !imageMimes[strings.ToLower(contentType)] {
			return "", fmt.Errorf("only image files (JPEG, PNG, WebP, AVIF) are allowed for %s, got %s", field, contentType)
		}
	} else if !strings.EqualFold(contentType, "application/pdf") {
		return "", fmt.Errorf("only PDF files are allowed for %s, got %s", field, contentType)
	}

	dir := leadDocDir
	subdir := "documents"
	if isImage {
		dir = leadImgDir
		subdir = "images"
	}

	name := fmt.Sprintf("%s-%s%s", field, uuid.New().String(), filepath.Ext(fh.Filename))

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return "/uploads/leads/" + subdir + "/" + name, nil
}

// DeleteLocalFile removes a previously stored upload by its public path.
// Missing files and failures are logged, never returned; stale-file cleanup
// must not fail the primary operation.
func DeleteLocalFile(publicPath string) {
	if publicPath == "" {
		return
	}

	rel := strings.TrimPrefix(publicPath, "/")
	if !strings.HasPrefix(rel, "uploads/") {
		log.Printf("Refusing to delete file outside uploads: %s", publicPath)
		return
	}

	if err := os.Remove(filepath.FromSlash(rel)); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to delete file %s: %v", publicPath, err)
		}
		return
	}

	log.Printf("Deleted file: %s", publicPath)
}
