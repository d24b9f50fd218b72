package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/realspark/console-gateway/internal/api/metrics"
	"github.com/realspark/console-gateway/internal/core/ports"
)

const maxProxyBody = 10 << 20

// ProxyHandler forwards a console feature area to the upstream platform API
// with the session's bearer token attached. The gateway owns none of the
// feature semantics: status and body pass through verbatim, and only
// transport failures become errors (normalized by the relay at the boundary).
type ProxyHandler struct {
	gateway  ports.FeatureGateway
	notifier ports.Notifier
	area     string
}

func NewProxyHandler(gateway ports.FeatureGateway, notifier ports.Notifier, area string) *ProxyHandler {
	return &ProxyHandler{gateway: gateway, notifier: notifier, area: area}
}

// Handle forwards the request as-is. The route path must match the upstream
// path; the bearer token comes from the guard-provided context.
func (h *ProxyHandler) Handle(c echo.Context) error {
	token, err := ctxToken(c)
	if err != nil {
		return err
	}

	var body []byte
	if c.Request().Body != nil {
		body, err = io.ReadAll(io.LimitReader(c.Request().Body, maxProxyBody))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
		}
	}

	start := time.Now()
	resp, err := h.gateway.Forward(
		c.Request().Context(),
		token,
		c.Request().Method,
		c.Request().URL.Path,
		c.QueryParams(),
		body,
	)
	metrics.UpstreamProxyDuration.WithLabelValues(h.area).Observe(time.Since(start).Seconds())
	if err != nil {
		h.notifier.ReportError(h.area, err)
		return echo.NewHTTPError(http.StatusBadGateway, "upstream unavailable")
	}

	contentType := resp.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(resp.Status, contentType, resp.Body)
}
