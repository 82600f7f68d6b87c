package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/logger"
)

type AssetKind string

const (
	AssetCover AssetKind = "cover"
	AssetPDF   AssetKind = "pdf"
)

// ErrUnsupportedType is returned for an upload whose extension does not
// fit its asset kind.
var ErrUnsupportedType = errors.New("storage: unsupported file type")

var allowedExtensions = map[AssetKind]map[string]bool{
	AssetCover: {"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true},
	AssetPDF:   {"pdf": true},
}

func ParseAssetKind(s string) (AssetKind, bool) {
	switch AssetKind(strings.ToLower(strings.TrimSpace(s))) {
	case AssetCover:
		return AssetCover, true
	case AssetPDF:
		return AssetPDF, true
	}
	return "", false
}

// Dir is the top-level directory for the kind: "covers" or "pdfs".
func (k AssetKind) Dir() string {
	return string(k) + "s"
}

// AssetPath names a new upload: <kind>s/<unixmillis>-<random>.<ext>.
func AssetPath(kind AssetKind, filename string, now time.Time) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !allowedExtensions[kind][ext] {
		return "", fmt.Errorf("%w: %q for %s", ErrUnsupportedType, filename, kind)
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return kind.Dir() + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + random + "." + ext, nil
}

// IsStoredPath reports whether ref points into storage rather than at an
// external URL.
func IsStoredPath(ref string) bool {
	if ref == "" || strings.Contains(ref, "://") {
		return false
	}
	return strings.HasPrefix(ref, AssetCover.Dir()+"/") || strings.HasPrefix(ref, AssetPDF.Dir()+"/")
}

// FilesPrefix is the URL path stored assets are served under.
const FilesPrefix = "/api/files/"

// StoredPath reduces a reference to the storage path it names. Upload urls,
// bare or prefixed with publicURL, map to their path; anything else is
// returned trimmed.
func StoredPath(ref, publicURL string) string {
	ref = strings.TrimSpace(ref)
	candidates := []string{FilesPrefix}
	if base := strings.TrimRight(strings.TrimSpace(publicURL), "/"); base != "" {
		candidates = append([]string{base + FilesPrefix}, candidates...)
	}
	for _, prefix := range candidates {
		if rest, ok := strings.CutPrefix(ref, prefix); ok && IsStoredPath(rest) {
			return rest
		}
	}
	return ref
}

// DeleteScheduler defers the removal of a stored file.
type DeleteScheduler interface {
	ScheduleDelete(ctx context.Context, path string) error
}

// Assets stores uploads and releases files that are no longer referenced.
type Assets struct {
	client    Client
	scheduler DeleteScheduler
	publicURL string
	now       func() time.Time
}

func NewAssets(client Client) *Assets {
	return &Assets{client: client, now: time.Now}
}

// SetScheduler routes Discard through a background queue. Without one,
// files are deleted inline.
func (a *Assets) SetScheduler(s DeleteScheduler) {
	a.scheduler = s
}

// SetPublicURL sets the origin upload urls are built from.
func (a *Assets) SetPublicURL(u string) {
	a.publicURL = strings.TrimRight(strings.TrimSpace(u), "/")
}

// URL is where the stored file at p is served.
func (a *Assets) URL(p string) string {
	return a.publicURL + FilesPrefix + p
}

// StoredPath maps ref to a storage path, recognizing urls returned by URL.
func (a *Assets) StoredPath(ref string) string {
	return StoredPath(ref, a.publicURL)
}

func (a *Assets) Client() Client {
	return a.client
}

// Save writes an upload and returns its storage path.
func (a *Assets) Save(ctx context.Context, kind AssetKind, upload *entities.FileUpload) (string, error) {
	if upload == nil {
		return "", errors.New("storage: nil upload")
	}
	p, err := AssetPath(kind, upload.Name, a.now())
	if err != nil {
		return "", err
	}
	if err := a.client.Upload(ctx, p, bytes.NewReader(upload.Data)); err != nil {
		return "", fmt.Errorf("store %s: %w", kind, err)
	}
	return p, nil
}

func (a *Assets) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if !IsStoredPath(p) {
		return nil, ErrNotFound
	}
	return a.client.Download(ctx, p)
}

// Discard releases a stored file. External URLs and empty refs are
// ignored. Failures are logged; the orphan sweep catches anything left
// behind.
func (a *Assets) Discard(ctx context.Context, p string) {
	if !IsStoredPath(p) {
		return
	}
	log := logger.For(ctx).WithFields(logrus.Fields{"path": p})

	if a.scheduler != nil {
		if err := a.scheduler.ScheduleDelete(ctx, p); err != nil {
			log.WithError(err).Warn("failed to schedule asset deletion")
		}
		return
	}
	if err := a.client.Delete(ctx, p); err != nil {
		log.WithError(err).Warn("failed to delete asset")
	}
}
