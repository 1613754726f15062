package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/encetamasb/TheSpaghettiDetective/internal/service"
)

const (
	errGetStatus       = "failed to load printer status"
	errGetPrint        = "failed to load current print"
	errGetSettings     = "failed to load printer settings"
	errListEvents      = "failed to load print events"
	errRegisterPrinter = "failed to register printer"
	errFromInvalid     = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid       = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// Request DTO for registering a printer.
type registerPrinterRequest struct {
	Name         string `json:"name" binding:"required"`
	AuthToken    string `json:"auth_token,omitempty"`
	ServiceToken string `json:"service_token,omitempty"`
}

// @Summary      Register a printer
// @Tags         printers
// @Accept       json
// @Produce      json
// @Param        body  body  registerPrinterRequest  true  "Printer payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/printers [post]
// @Security     BearerAuth
func (h *Handler) registerPrinter(c *gin.Context) {
	var req registerPrinterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	device, err := h.services.RegisterDevice(c.Request.Context(), req.Name, req.AuthToken, req.ServiceToken)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRegisterPrinter, "printer_register_failed", err, "name", req.Name)
		return
	}
	c.JSON(http.StatusOK, gin.H{"printer": device})
}

// @Summary      Get latest printer status
// @Description  Returns the cached canonical status; 404 when the printer has not reported within the TTL window.
// @Tags         printers
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/printers/{id}/status [get]
// @Security     BearerAuth
func (h *Handler) getPrinterStatus(c *gin.Context) {
	status := h.services.GetStatus(c.Param("id"))
	if status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recent status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary      Get current print
// @Tags         printers
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/printers/{id}/print [get]
// @Security     BearerAuth
func (h *Handler) getCurrentPrint(c *gin.Context) {
	rec, err := h.services.GetCurrentPrint(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "printer not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetPrint, "current_print_failed", err, "printer_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"print": rec})
}

// @Summary      Get printer settings
// @Description  Last-write-wins settings projection (webcam flags, temperature profiles, printer metadata) as reported by the agent.
// @Tags         printers
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/printers/{id}/settings [get]
// @Security     BearerAuth
func (h *Handler) getPrinterSettings(c *gin.Context) {
	settings, err := h.services.GetSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "printer not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSettings, "printer_settings_failed", err, "printer_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List print events
// @Description  Pause/resume audit trail for one print, filtered by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive.
// @Tags         prints
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2026-03-01)
// @Param        to    query   string  false  "End of range; date-only treated as end of day"  example(2026-03-31)
// @Param        type  query   string  false  "Event type"  Enums(PAUSED,RESUMED)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/prints/{id}/events [get]
// @Security     BearerAuth
func (h *Handler) getPrintEvents(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from time.Time
		to   time.Time
		// Normalize event type: trim spaces and uppercase to match expected values.
		eventType = strings.ToUpper(strings.TrimSpace(c.Query("type")))
		err       error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		// If the user didn't include a time component, treat "to" as the end of that day.
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	events, err := h.services.ListPrintEvents(ctx, c.Param("id"), service.EventFilter{
		From: from,
		To:   to,
		Type: eventType,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListEvents, "print_events_failed", err, "print_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
