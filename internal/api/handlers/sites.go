package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"geyser-scheduler/internal/data"
)

// SiteHandler lists the candidate sites configured on the server.
type SiteHandler struct {
	path string
	log  zerolog.Logger
}

func NewSiteHandler(path string, log zerolog.Logger) *SiteHandler {
	return &SiteHandler{path: path, log: log}
}

// ListSites handles GET /api/v1/sites
func (h *SiteHandler) ListSites(c *gin.Context) {
	if h.path == "" {
		c.JSON(http.StatusOK, gin.H{"sites": []data.Site{}})
		return
	}
	list, err := data.LoadSites(h.path)
	if err != nil {
		h.log.Error().Err(err).Str("file", h.path).Msg("failed to load sites")
		writeError(c, http.StatusInternalServerError, "SITES_LOAD_ERROR", "failed to load sites", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sites": list.Sites, "updated_at": list.UpdatedAt})
}
