package routes

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"volumescope/internal/logger"
	"volumescope/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterStaticRoutes serves the dashboard bundle from dir. Unknown paths get
// index.html so client-side routing works; unknown /api paths get a JSON 404.
func RegisterStaticRoutes(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		logger.Warn("[STATIC] No dashboard bundle at %s: %v", dir, err)
	}

	r.NoRoute(func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if strings.HasPrefix(reqPath, "/api/") || reqPath == "/api" {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "method not allowed"})
			return
		}

		// Clean against "/" first so the result cannot climb out of dir
		rel := filepath.FromSlash(path.Clean("/" + reqPath))
		candidate := filepath.Join(dir, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}

		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "dashboard not installed"})
			return
		}
		c.File(index)
	})
}
