package http

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/metrics"
	"github.com/tulisify/tulisify/internal/storage"
)

type UploadResponse struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// FilesController accepts uploads and serves stored assets.
type FilesController struct {
	assets *storage.Assets
}

func NewFilesController(assets *storage.Assets) *FilesController {
	return &FilesController{assets: assets}
}

// Upload handles POST /api/upload: a multipart "file" part plus a "type"
// field of cover or pdf.
func (fc *FilesController) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, MsgFileTooLarge)
			return
		}
		respondBadRequest(c, "No file provided")
		return
	}

	kind, ok := storage.ParseAssetKind(c.PostForm("type"))
	if !ok {
		respondBadRequest(c, "Invalid file type")
		return
	}

	upload, err := readUpload(fh)
	if err != nil {
		respondInternalError(c, err, "Failed to upload file")
		return
	}

	ctx := c.Request.Context()
	p, err := fc.assets.Save(ctx, kind, upload)
	if errors.Is(err, storage.ErrUnsupportedType) {
		metrics.UseCaseOutcomes.WithLabelValues("upload", "validation").Inc()
		respondBadRequest(c, "Unsupported file type")
		return
	}
	if err != nil {
		metrics.UseCaseOutcomes.WithLabelValues("upload", "server").Inc()
		respondInternalError(c, err, "Failed to upload file")
		return
	}

	metrics.UseCaseOutcomes.WithLabelValues("upload", "success").Inc()
	logger.For(ctx).WithFields(logrus.Fields{"path": p, "size": len(upload.Data)}).Info("asset uploaded")
	c.JSON(http.StatusOK, UploadResponse{URL: fc.assets.URL(p), Path: p})
}

// Download handles GET /api/files/*path.
func (fc *FilesController) Download(c *gin.Context) {
	p := strings.TrimPrefix(c.Param("path"), "/")

	rc, err := fc.assets.Open(c.Request.Context(), p)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(c, http.StatusNotFound, "File not found")
		return
	case errors.Is(err, storage.ErrInvalidPath):
		respondBadRequest(c, "Invalid file path")
		return
	case err != nil:
		respondInternalError(c, err, "Failed to read file")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": `inline; filename="` + path.Base(p) + `"`,
		"Cache-Control":       "private, max-age=3600",
	})
}
