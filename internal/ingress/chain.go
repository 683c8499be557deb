package ingress

import (
	"net/http"

	"github.com/r3e-network/metasearch/internal/config"
	"github.com/r3e-network/metasearch/internal/platform/metrics"
	"github.com/r3e-network/metasearch/internal/platform/resilience"
)

// Chain bundles the collaborators every ingress stage needs.
type Chain struct {
	Cfg         config.ExternalConfig
	Auth        AuthConfig
	IPFilter    IPFilterConfig
	MagicLink   *MagicLinkStore
	Breaker     *resilience.CircuitBreaker
	RateLimiter *RateLimiter
	Metrics     *metrics.Collector
}

// Wrap composes the external-listener stages around handler in a fixed
// order: CORS outermost (seen first at the wire), then RateLimit,
// CircuitBreaker, IPFilter, MagicLink, Auth innermost (seen last before
// the route dispatches). MagicLink runs ahead of Auth so a request that
// carries a valid magic token is already authenticated when Auth sees it.
func (c Chain) Wrap(handler http.Handler) http.Handler {
	h := handler
	h = Auth(c.Auth, c.Cfg.EnableJWTAuth, h)
	h = MagicLink(c.MagicLink, h)
	h = IPFilter(c.IPFilter, c.Cfg.EnableIPFilter, c.Metrics, h)
	h = CircuitBreaker(c.Breaker, c.Cfg.EnableCircuitBreaker, c.Metrics, h)
	h = RateLimit(c.RateLimiter, c.Cfg.EnableRateLimit, c.Metrics, h)
	h = CORS(c.Cfg.CORSOrigins, h)
	return h
}

// WrapInternal composes only the CORS stage, matching the internal
// listener's reduced chain.
func WrapInternal(origins []string, handler http.Handler) http.Handler {
	return CORS(origins, handler)
}
