// Package drive implements a DocumentSource over a Google Drive folder.
package drive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/reqlens/internal/connectors/google"
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
	"github.com/custodia-labs/reqlens/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// IDPrefix starts every Drive document id.
const IDPrefix = "gdrive:"

// ErrNoFolder is returned when no folder id is configured.
var ErrNoFolder = errors.New("drive: folder id is required")

// Source lists the supported files of one Drive folder.
// Document ids are "gdrive:<fileId>"; the change marker is the md5 checksum,
// or the modification time for Google Docs.
type Source struct {
	svc         *drive.Service
	cfg         Config
	rateLimiter *google.RateLimiter
}

// New creates a Drive source.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.FolderID) == "" {
		return nil, ErrNoFolder
	}
	svc, err := google.NewDriveService(ctx, cfg.Token, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("drive: create service: %w", err)
	}

	rl := google.NewRateLimiter()
	if cfg.RequestsPerSecond > 0 {
		rl = google.NewRateLimiterWithConfig(google.RateLimitConfig{
			RequestsPerSecond: cfg.RequestsPerSecond,
			BurstSize:         int(cfg.RequestsPerSecond),
		})
	}

	return &Source{svc: svc, cfg: cfg.withDefaults(), rateLimiter: rl}, nil
}

// Name identifies the source.
func (s *Source) Name() string {
	return IDPrefix + s.cfg.FolderID
}

// List pages through the folder, descending into sub-folders when Recursive is set.
func (s *Source) List(ctx context.Context) ([]domain.SourceDocument, error) {
	var docs []domain.SourceDocument
	seen := map[string]bool{}
	queue := []string{s.cfg.FolderID}

	for len(queue) > 0 {
		folder := queue[0]
		queue = queue[1:]
		if seen[folder] {
			continue
		}
		seen[folder] = true

		files, err := s.listFolder(ctx, folder)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.MimeType == MimeTypeFolder {
				if s.cfg.Recursive {
					queue = append(queue, f.Id)
				}
				continue
			}
			if !shouldRead(f, &s.cfg) {
				logger.Debug("drive: skipping %s (%s)", f.Name, f.MimeType)
				continue
			}
			docs = append(docs, domain.SourceDocument{
				ID:           IDPrefix + f.Id,
				Name:         f.Name,
				Size:         f.Size,
				ChangeMarker: changeMarker(f),
				Format:       fileFormat(f),
			})
		}
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *Source) listFolder(ctx context.Context, folderID string) ([]*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))
	var (
		out       []*drive.File
		pageToken string
	)
	for {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		call := s.svc.Files.List().
			Q(query).
			PageSize(s.cfg.PageSize).
			Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")")).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, s.wrap(err, "list folder "+folderID)
		}
		out = append(out, resp.Files...)
		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

// Fetch downloads the file behind a "gdrive:<fileId>" id.
func (s *Source) Fetch(ctx context.Context, id string) (*domain.SourceContent, error) {
	fileID, ok := strings.CutPrefix(id, IDPrefix)
	if !ok || fileID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	file, err := s.svc.Files.Get(fileID).Fields(googleapi.Field(fileFields)).Context(ctx).Do()
	if err != nil {
		return nil, s.wrap(err, "get "+id)
	}
	format := fileFormat(file)
	if file.Trashed || file.MimeType == MimeTypeFolder || format == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	data, err := download(ctx, s.svc, file)
	if err != nil {
		return nil, s.wrap(err, "download "+id)
	}
	return &domain.SourceContent{Data: data, Format: format, ChangeMarker: changeMarker(file)}, nil
}

// wrap maps API errors and arms the backoff on 429.
func (s *Source) wrap(err error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.rateLimiter.Backoff(err)
	return fmt.Errorf("drive: %s: %w", op, google.WrapError(err))
}

// escapeQuery escapes a value for a Drive query string literal.
func escapeQuery(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}
