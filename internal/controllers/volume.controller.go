package controllers

import (
	"net/http"
	"strings"

	"volumescope/internal/models"
	"volumescope/internal/services"

	"github.com/gin-gonic/gin"
)

// GetVolume returns capacity of the filesystem holding ?path= (default: the
// configured root)
func (sc *ScanController) GetVolume(c *gin.Context) {
	path := c.Query("path")
	if strings.TrimSpace(path) == "" {
		path = sc.scans.DefaultRoot()
	}
	if !sc.validator.ValidateScanPath(path) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid path"})
		return
	}

	usage, err := services.GetCachedVolumeUsage(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, usage)
}
