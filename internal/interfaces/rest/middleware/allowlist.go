package middleware

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
)

// AllowedIPs restricts a route group to the kiosk machines. An empty list
// allows every client.
func AllowedIPs(ips []string, logger *slog.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		if parsed := net.ParseIP(ip); parsed != nil {
			allowed[parsed.String()] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if ip := net.ParseIP(host); ip != nil {
				if _, ok := allowed[ip.String()]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("client not in allowlist", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			rest.WriteError(w, application.NewForbiddenError("Access denied"), logger)
		})
	}
}
