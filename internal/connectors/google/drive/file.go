package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// Google MIME types with special handling.
const (
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"
	MimeTypeFolder    = "application/vnd.google-apps.folder"
)

// ExportMimeDOCX is the export format for Google Docs.
const ExportMimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// MaxDownloadSize is the maximum size read for one file (20MB).
const MaxDownloadSize = 20 * 1024 * 1024

// fileFields are requested for every listed or fetched file.
const fileFields = "id, name, mimeType, size, md5Checksum, modifiedTime, version, trashed"

// fileFormat returns the document format of a Drive file, or "" when unsupported.
func fileFormat(file *drive.File) domain.Format {
	if file.MimeType == MimeTypeGoogleDoc {
		return domain.FormatDOCX
	}
	return domain.DetectFormat(file.Name, file.MimeType)
}

// changeMarker prefers the content checksum. Google Docs have none, so their
// modification time and version stand in.
func changeMarker(file *drive.File) string {
	if file.Md5Checksum != "" {
		return file.Md5Checksum
	}
	if file.Version != 0 {
		return fmt.Sprintf("%s#%d", file.ModifiedTime, file.Version)
	}
	return file.ModifiedTime
}

// shouldRead checks if a file should be listed based on config.
func shouldRead(file *drive.File, cfg *Config) bool {
	if file.MimeType == MimeTypeFolder || file.Trashed {
		return false
	}
	if file.Size > MaxDownloadSize {
		return false
	}
	if file.MimeType == MimeTypeGoogleDoc {
		return cfg.HasContentType(ContentDocs)
	}
	return cfg.HasContentType(ContentFiles) && fileFormat(file) != ""
}

// download retrieves the bytes of a file, exporting Google Docs to DOCX.
func download(ctx context.Context, svc *drive.Service, file *drive.File) ([]byte, error) {
	var (
		resp *http.Response
		err  error
	)
	if file.MimeType == MimeTypeGoogleDoc {
		resp, err = svc.Files.Export(file.Id, ExportMimeDOCX).Context(ctx).Download()
	} else {
		resp, err = svc.Files.Get(file.Id).Context(ctx).Download()
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file content: %w", err)
	}
	if len(data) > MaxDownloadSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, file.Name, MaxDownloadSize)
	}
	return data, nil
}
