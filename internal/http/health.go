package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tulisify/tulisify/internal/database"
	"github.com/tulisify/tulisify/internal/storage"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	storage storage.Client
	version string
}

func NewHealthController(db *database.Database, store storage.Client, version string) *HealthController {
	return &HealthController{
		db:      db,
		storage: store,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// The storage root must exist for uploads and downloads to work.
	if h.storage != nil {
		ok, err := h.storage.Exists(c.Request.Context(), "")
		switch {
		case err != nil:
			checks["storage"] = "error: " + err.Error()
			status = "unhealthy"
		case !ok:
			checks["storage"] = "error: root missing"
			status = "unhealthy"
		default:
			checks["storage"] = "ok"
		}
	} else {
		checks["storage"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
