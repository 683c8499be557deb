package ingress

import (
	"net/http"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
	"github.com/r3e-network/metasearch/internal/platform/httputil"
	"github.com/r3e-network/metasearch/internal/platform/metrics"
)

// IPFilterMode selects allow-list vs deny-list semantics.
type IPFilterMode string

const (
	IPFilterAllow IPFilterMode = "allow"
	IPFilterDeny  IPFilterMode = "deny"
)

// IPFilterConfig configures the membership check.
type IPFilterConfig struct {
	Mode IPFilterMode
	List map[string]struct{}
}

func NewIPFilterConfig(mode IPFilterMode, ips []string) IPFilterConfig {
	set := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		set[ip] = struct{}{}
	}
	return IPFilterConfig{Mode: mode, List: set}
}

// IPFilter wraps next with the IP allow/deny-list stage.
func IPFilter(cfg IPFilterConfig, enabled bool, collector *metrics.Collector, next http.Handler) http.Handler {
	if !enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIP(r)
		_, present := cfg.List[ip]

		blocked := false
		switch cfg.Mode {
		case IPFilterAllow:
			blocked = !present
		case IPFilterDeny:
			blocked = present
		}

		if blocked {
			if collector != nil {
				collector.RecordIPBlocked()
			}
			writeErr(w, apierrors.IPBlocked("client ip not permitted"))
			return
		}
		next.ServeHTTP(w, withClientIP(r, ip))
	})
}
