package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"StockPull/internal/domain/models"
	"StockPull/internal/service/metrics"
	xhttp "StockPull/pkg/http"
	applogger "StockPull/pkg/logger"
)

// toAppError maps usecase failures onto HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var (
		verr *models.ValidationError
		uerr *models.UpstreamError
		nerr *models.NetworkError
		cerr *models.ConfigurationError
	)
	switch {
	case errors.As(err, &verr):
		return xhttp.NewAppError("ERR_VALIDATION", verr.Field, verr.Error(), http.StatusBadRequest).WithError(err)
	case errors.As(err, &uerr):
		return xhttp.BadGatewayError("upstream rejected the request").
			WithParam("dataset", uerr.Dataset).
			WithParam("code", uerr.Code).
			WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("request timed out").WithError(err)
	case errors.As(err, &nerr):
		return xhttp.ServiceUnavailableError("upstream unreachable").
			WithParam("dataset", nerr.Dataset).
			WithError(err)
	case errors.As(err, &cerr):
		return xhttp.InternalError("service misconfigured").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

func errorKind(e *xhttp.AppError) string {
	switch e.Code {
	case "ERR_VALIDATION":
		return "validation"
	case "ERR_UPSTREAM":
		return "upstream"
	case "ERR_UPSTREAM_UNAVAILABLE":
		return "network"
	case "ERR_TIMEOUT":
		return "timeout"
	default:
		return "internal"
	}
}

// respondError writes err as an error envelope. Client errors are logged
// at warn, everything else at error.
func respondError(c echo.Context, l *applogger.Logger, endpoint string, err error) error {
	appErr := toAppError(err)
	metrics.APIErrors.WithLabelValues(endpoint, errorKind(appErr)).Inc()

	fields := []applogger.Field{
		applogger.String("endpoint", endpoint),
		applogger.String("code", appErr.Code),
		applogger.Error(err),
	}
	if appErr.Status < 500 {
		l.Warn("request rejected", fields...)
	} else {
		l.Error("request failed", fields...)
	}
	return xhttp.AppErrorResponse(c, appErr)
}
