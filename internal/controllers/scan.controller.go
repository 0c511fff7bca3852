package controllers

import (
	"net/http"

	"volumescope/internal/middleware"
	"volumescope/internal/models"
	"volumescope/internal/services"

	"github.com/gin-gonic/gin"
)

// ScanController serves the folder-size endpoints
type ScanController struct {
	scans     *services.ScanService
	validator *middleware.PathValidator
}

// NewScanController wires a controller to a scan service
func NewScanController(scans *services.ScanService) *ScanController {
	return &ScanController{
		scans:     scans,
		validator: middleware.NewPathValidator(),
	}
}

// GetScan sizes every immediate subdirectory of ?path= (default: configured root)
func (sc *ScanController) GetScan(c *gin.Context) {
	path := c.Query("path")
	if !sc.validator.ValidateScanPath(path) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Unable to scan directory: invalid path",
		})
		return
	}

	result, err := sc.scans.Scan(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Unable to scan directory: " + err.Error(),
		})
		return
	}

	services.BroadcastScanResult(result)
	c.JSON(http.StatusOK, result)
}

// GetHealth always reports ok
func GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
