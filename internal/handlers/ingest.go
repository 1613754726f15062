package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/service"
)

const (
	statusOK = "ok"

	errReadBody    = "failed to read report body"
	errProcessing  = "failed to process report"
	errBadFormat   = "unsupported source format"
	errNoDeviceCtx = "device identity missing from request context"
)

// @Summary      Ingest a telemetry report
// @Description  Sole ingestion entry point; body is the raw status report in the given source format.
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        format  path  string  true  "Source format"  Enums(octoprint,moonraker)
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/device/report/{format} [post]
// @Security     BearerAuth
func (h *Handler) report(c *gin.Context) {
	device, ok := deviceFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errNoDeviceCtx})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errReadBody, "report_read_body_failed", err, "device_id", device.ID)
		return
	}

	format := models.SourceFormat(c.Param("format"))
	if err := h.services.Report(c.Request.Context(), device, format, raw); err != nil {
		if errors.Is(err, service.ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errBadFormat})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errProcessing, "report_failed", err, "device_id", device.ID, "format", string(format))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}
