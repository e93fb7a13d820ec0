package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"StockPull/internal/domain/models"
	dservice "StockPull/internal/domain/service"
	"StockPull/internal/service/metrics"
	xhttp "StockPull/pkg/http"
	applogger "StockPull/pkg/logger"
	"StockPull/pkg/util"
)

// InstrumentsEchoHandler serves the merged instrument listing.
type InstrumentsEchoHandler struct {
	logger *applogger.Logger
	agg    dservice.InstrumentAggregator
}

func NewInstrumentsEchoHandler(logger *applogger.Logger, agg dservice.InstrumentAggregator) *InstrumentsEchoHandler {
	metrics.Register()
	return &InstrumentsEchoHandler{logger: logger, agg: agg}
}

func (h *InstrumentsEchoHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/instruments", h.List)
}

func (h *InstrumentsEchoHandler) List(c echo.Context) error {
	const endpoint = "instruments"
	defer observeLatency(endpoint, time.Now())

	req := &models.InstrumentsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.Aggregate(c.Request().Context(), models.AggregateParams{
		Market:         models.Market(req.Market),
		Limit:          req.Limit,
		WithQuote:      req.WithQuote,
		WithIndicators: req.WithIndicators,
		ListStatus:     models.ListStatus(req.ListStatus),
		TradeDate:      req.TradeDate,
		Codes:          util.SplitList(req.Codes),
	})
	if err != nil {
		return respondError(c, h.logger, endpoint, err)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=30")
	return xhttp.SuccessResponse(c, res)
}
