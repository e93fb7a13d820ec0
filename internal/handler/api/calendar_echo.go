package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"StockPull/internal/domain/models"
	dservice "StockPull/internal/domain/service"
	"StockPull/internal/service/metrics"
	xhttp "StockPull/pkg/http"
	applogger "StockPull/pkg/logger"
)

// CalendarEchoHandler serves trading calendars and cache maintenance.
type CalendarEchoHandler struct {
	logger *applogger.Logger
	cal    dservice.TradingCalendar
}

func NewCalendarEchoHandler(logger *applogger.Logger, cal dservice.TradingCalendar) *CalendarEchoHandler {
	metrics.Register()
	return &CalendarEchoHandler{logger: logger, cal: cal}
}

func (h *CalendarEchoHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/calendar", h.Range)
	g.GET("/calendar/month", h.Month)
	g.DELETE("/calendar/cache", h.Clear)
	g.DELETE("/calendar/cache/:exchange/:year/:month", h.Invalidate)
}

func (h *CalendarEchoHandler) Range(c echo.Context) error {
	const endpoint = "calendar"
	defer observeLatency(endpoint, time.Now())

	req := &models.CalendarRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	p := models.CalendarParams{
		Exchange:  req.Exchange,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.IsOpen != "" {
		open := req.IsOpen == "1"
		p.IsOpen = &open
	}

	res, err := h.cal.Range(c.Request().Context(), p)
	if err != nil {
		return respondError(c, h.logger, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *CalendarEchoHandler) Month(c echo.Context) error {
	const endpoint = "calendar_month"
	defer observeLatency(endpoint, time.Now())

	req := &models.MonthRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	entry, err := h.cal.Month(c.Request().Context(), req.Exchange, req.Year, req.Month, req.Refresh)
	if err != nil {
		return respondError(c, h.logger, endpoint, err)
	}
	return xhttp.SuccessResponse(c, entry)
}

func (h *CalendarEchoHandler) Invalidate(c echo.Context) error {
	const endpoint = "calendar_invalidate"
	defer observeLatency(endpoint, time.Now())

	req := &models.InvalidateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	existed, err := h.cal.Invalidate(c.Request().Context(), req.Exchange, req.Year, req.Month)
	if err != nil {
		return respondError(c, h.logger, endpoint, err)
	}
	if !existed {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("month not cached").
			WithParam("exchange", req.Exchange).
			WithParam("year", req.Year).
			WithParam("month", req.Month))
	}
	h.logger.Info("calendar month invalidated",
		applogger.String("exchange", req.Exchange),
		applogger.Int("year", req.Year),
		applogger.Int("month", req.Month),
	)
	return xhttp.NoContentResponse(c)
}

func (h *CalendarEchoHandler) Clear(c echo.Context) error {
	const endpoint = "calendar_clear"
	defer observeLatency(endpoint, time.Now())

	if err := h.cal.Clear(c.Request().Context()); err != nil {
		return respondError(c, h.logger, endpoint, err)
	}
	return xhttp.NoContentResponse(c)
}

func observeLatency(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
