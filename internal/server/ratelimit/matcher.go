package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited marks endpoints that are never limited.
var unlimited = EndpointConfig{Name: "unlimited"}

// MatchEndpoint returns the tier for a request, or nil when the default limit
// applies. GET /health is always unlimited. An exact path wins over a prefix,
// and among prefixes the longest wins.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == http.MethodGet {
		return &unlimited
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		if config.Path == path {
			return config
		}
		if strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			if best == nil || len(config.Path) > len(best.Path) {
				best = config
			}
		}
	}
	return best
}
