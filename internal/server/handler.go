package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/autodns/autodns/internal/ddns"
	"github.com/autodns/autodns/internal/provider"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// updateService is the slice of *ddns.Service the HTTP surface needs.
type updateService interface {
	Update(ctx context.Context, token, ip string) (*ddns.UpdateResult, error)
}

// UpdateHandler serves the dynamic-DNS update endpoint.
type UpdateHandler struct {
	svc        updateService
	trustProxy bool
	logger     *zap.Logger
}

// NewUpdateHandler creates an UpdateHandler. trustProxy enables client-IP
// resolution from X-Forwarded-For and must only be set behind a trusted
// reverse proxy.
func NewUpdateHandler(svc updateService, trustProxy bool, logger *zap.Logger) *UpdateHandler {
	return &UpdateHandler{svc: svc, trustProxy: trustProxy, logger: logger}
}

// Register mounts the update route on the router.
func (h *UpdateHandler) Register(r gin.IRoutes) {
	r.GET("/update-dns", h.UpdateDNS)
}

// UpdateDNS handles GET /update-dns?token=<T>.
//
// Status codes: 400 missing token, 401 unknown token, 429 rate limited
// (with Retry-After), 502 provider failure including a missing record,
// 200 on success. Unknown-token and rate-limited denials are deliberately
// distinct so a client can tell "never had access" from "try again later".
func (h *UpdateHandler) UpdateDNS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		// Legacy clients send the token as "guid".
		token = c.Query("guid")
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token parameter is missing"})
		return
	}

	ip := h.clientIP(c)
	res, err := h.svc.Update(c.Request.Context(), token, ip)
	if err != nil {
		h.renderUpdateError(c, err)
		return
	}

	ddnsUpdatesTotal.WithLabelValues("applied").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "DNS record for " + res.Hostname + " updated to " + res.IP + ".",
	})
}

func (h *UpdateHandler) renderUpdateError(c *gin.Context, err error) {
	var rl *ddns.RateLimitedError

	switch {
	case errors.Is(err, ddns.ErrUnknownToken):
		ddnsUpdatesTotal.WithLabelValues("unknown_token").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown token"})

	case errors.As(err, &rl):
		ddnsUpdatesTotal.WithLabelValues("rate_limited").Inc()
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limited, try again later"})

	case errors.Is(err, provider.ErrRecordNotFound), errors.Is(err, provider.ErrProvider):
		ddnsUpdatesTotal.WithLabelValues("provider_error").Inc()
		h.logger.Error("provider update failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "DNS provider update failed"})

	default:
		h.logger.Error("update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// clientIP resolves the requester's address: the first entry of a trusted
// X-Forwarded-For header when behind a proxy, else the direct peer address.
func (h *UpdateHandler) clientIP(c *gin.Context) string {
	if h.trustProxy {
		if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	return c.RemoteIP()
}
