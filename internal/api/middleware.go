package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/campreview/internal/logging"
)

// quietPaths are polled by probes and the preview page; successful
// requests to them are logged at debug.
var quietPaths = map[string]bool{
	"/api/health":           true,
	"/api/session":          true,
	"/api/preview/snapshot": true,
}

// requestLevel picks the log level of a finished request.
func requestLevel(method, path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case method == http.MethodOptions, quietPaths[path]:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// HTTPLoggingMiddleware logs every API request once it has completed.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	method := ctx.Method()
	u := ctx.URL()
	path := u.Path

	next(ctx)

	status := ctx.Status()
	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
		slog.String("remote_addr", ctx.RemoteAddr()),
	}
	if q := u.Query(); len(q) > 0 {
		// Credentials passed by EventSource and WebSocket clients stay out of the log.
		if q.Has("auth") {
			q.Set("auth", "redacted")
		}
		attrs = append(attrs, slog.String("query", q.Encode()))
	}
	if ua := ctx.Header("User-Agent"); ua != "" && !strings.HasPrefix(ua, "Go-http-client") {
		attrs = append(attrs, slog.String("user_agent", ua))
	}

	logging.GetLogger("http").LogAttrs(ctx.Context(), requestLevel(method, path, status), "HTTP request completed", attrs...)
}
