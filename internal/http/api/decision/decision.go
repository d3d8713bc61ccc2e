// Package decision exposes the authorization decision endpoint consumed by
// the reverse proxy on every guarded request.
package decision

import (
	"net/http"
	"strings"

	"github.com/authgate-dev/authgate/internal/authz"
	"github.com/authgate-dev/authgate/internal/ratelimit"
	"github.com/authgate-dev/authgate/internal/sanitize"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handler serves decision requests.
type Handler struct {
	engine  *authz.Engine
	limiter *ratelimit.Manager
}

// NewHandler constructs a decision Handler.
func NewHandler(engine *authz.Engine, limiter *ratelimit.Manager) *Handler {
	return &Handler{engine: engine, limiter: limiter}
}

// RegisterRoutes registers the decision endpoints.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.POST("/api/authorize", h.Authorize)
	r.GET("/api/authorize/forward", h.Forward)
}

// authorizeRequest is the decision request body.
type authorizeRequest struct {
	URL      string `json:"url"`
	Identity string `json:"identity"`
}

// Authorize decides whether the identity may access the URL. Status codes:
// 200 allowed, 401 no identity and no public match, 403 identity denied,
// 429 rate limited, 500 store failure (denied).
func (h *Handler) Authorize(c *gin.Context) {
	var body authorizeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.decide(c, strings.TrimSpace(body.URL), strings.TrimSpace(body.Identity))
}

// Forward is the sub-request variant for proxies that cannot POST a body.
// The original request URL is rebuilt from X-Forwarded-* headers and the
// identity read from X-Auth-Request-Email.
func (h *Handler) Forward(c *gin.Context) {
	proto := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto"))
	host := strings.TrimSpace(c.GetHeader("X-Forwarded-Host"))
	uri := strings.TrimSpace(c.GetHeader("X-Forwarded-Uri"))
	identity := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))

	rawURL := uri
	if host != "" {
		if proto == "" {
			proto = "https"
		}
		if !strings.HasPrefix(uri, "/") {
			uri = "/" + uri
		}
		rawURL = proto + "://" + host + uri
	}
	h.decide(c, rawURL, identity)
}

func (h *Handler) decide(c *gin.Context, rawURL, identity string) {
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url"})
		return
	}

	if key := ratelimit.KeyForRequest(identity, c.ClientIP()); key != "" {
		result, errLimit := h.limiter.Allow(c.Request.Context(), key)
		if errLimit == nil && !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"allowed": false, "error": "rate limit exceeded"})
			return
		}
	}

	allowed, errDecide := h.engine.Decide(c.Request.Context(), identity, rawURL)
	if errDecide != nil {
		// Store failures deny; never fail open.
		log.WithError(errDecide).WithField("url", sanitize.URL(rawURL)).Error("decision failed")
		c.JSON(http.StatusInternalServerError, gin.H{"allowed": false, "error": "internal error"})
		return
	}
	if allowed {
		c.JSON(http.StatusOK, gin.H{"allowed": true})
		return
	}
	if identity == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"allowed": false, "error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusForbidden, gin.H{"allowed": false})
}
