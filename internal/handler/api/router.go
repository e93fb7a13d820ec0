package api

import (
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"StockPull/internal/service/ratelimit"
	xhttp "StockPull/pkg/http"
	applogger "StockPull/pkg/logger"
)

// pruneEvery is how many throttled requests pass between bucket sweeps.
const pruneEvery = 1024

// RouteGroup is implemented by handlers mounted under /api.
type RouteGroup interface {
	RegisterRoutes(g *echo.Group)
}

// ThrottleConfig bounds requests per client and route.
type ThrottleConfig struct {
	Enabled      bool
	Capacity     int
	RefillPerSec float64
	IdleTTL      time.Duration
}

// Router mounts every API handler and the health probe.
type Router struct {
	logger   *applogger.Logger
	groups   []RouteGroup
	throttle ThrottleConfig
	limiter  *ratelimit.Limiter
	seen     atomic.Uint64
}

var _ xhttp.Handler = (*Router)(nil)

func NewRouter(logger *applogger.Logger, throttle ThrottleConfig, groups ...RouteGroup) *Router {
	if throttle.IdleTTL <= 0 {
		throttle.IdleTTL = 10 * time.Minute
	}
	return &Router{
		logger:   logger,
		groups:   groups,
		throttle: throttle,
		limiter:  ratelimit.New(),
	}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
	})

	g := e.Group("/api")
	if r.throttle.Enabled {
		g.Use(r.throttleMiddleware)
	}
	for _, h := range r.groups {
		h.RegisterRoutes(g)
	}
}

func (r *Router) throttleMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if n := r.seen.Add(1); n%pruneEvery == 0 {
			if dropped := r.limiter.Prune(r.throttle.IdleTTL); dropped > 0 {
				r.logger.Debug("throttle buckets pruned", applogger.Int("dropped", dropped))
			}
		}

		key := c.RealIP() + ":" + c.Request().Method + " " + c.Path()
		if !r.limiter.Allow(key, float64(r.throttle.Capacity), r.throttle.RefillPerSec) {
			r.logger.Warn("request throttled",
				applogger.String("ip", c.RealIP()),
				applogger.String("route", c.Path()),
			)
			c.Response().Header().Set("Retry-After", "1")
			return xhttp.TooManyRequestsResponse(c)
		}
		return next(c)
	}
}
