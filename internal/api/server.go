// Package api exposes the camera session to platform glue over HTTP.
package api

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/campreview/internal/api/models"
	"github.com/smazurov/campreview/internal/camera"
	"github.com/smazurov/campreview/internal/events"
	"github.com/smazurov/campreview/internal/led"
	"github.com/smazurov/campreview/internal/logging"
	"github.com/smazurov/campreview/internal/notice"
	"github.com/smazurov/campreview/internal/session"
	"github.com/smazurov/campreview/internal/version"
	"github.com/smazurov/campreview/ui"
)

const authRealm = `Basic realm="campreview"`

// SessionController is the lifecycle surface of the camera session.
type SessionController interface {
	OnResume()
	OnPause()
	OnSurfaceReady(surface camera.Surface, width, height int)
	OnSurfaceSizeChanged(width, height int)
	OnPermissionResult(granted bool)
	Snapshot() session.Snapshot
}

// PreviewSurface is a camera surface that also serves its frames.
type PreviewSurface interface {
	camera.Surface
	http.Handler
	LastFrame() ([]byte, time.Time, bool)
}

// PermissionBroker answers pending permission requests.
type PermissionBroker interface {
	Answer(granted bool) bool
	Pending() (camera.Identity, bool)
}

// DisplayRotator reports and changes the display rotation.
type DisplayRotator interface {
	Rotation() camera.DisplayRotation
	SetDegrees(degrees int) (bool, error)
}

// NoticeSource lists recent notices.
type NoticeSource interface {
	Recent(n int) []notice.Notice
}

// LEDStatus reports the status LED.
type LEDStatus interface {
	Pattern() led.Pattern
	GetController() led.Controller
}

// Options configures the API server.
type Options struct {
	AuthUsername string
	AuthPassword string

	Controller  SessionController // Required
	Cameras     camera.Service    // Required
	Surface     PreviewSurface    // Required
	Permissions PermissionBroker  // Optional
	Display     DisplayRotator    // Optional
	Notices     NoticeSource      // Optional
	LEDs        LEDStatus         // Optional
	EventBus    *events.Bus       // Required for SSE endpoints

	PrometheusHandler http.Handler // Optional Prometheus metrics handler
}

// Server is the huma API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	eventBus   *events.Bus
	logger     *slog.Logger
}

// NewServer creates the API server using Go 1.22+ native routing.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("campreview API", version.String())
	config.Info.Description = "Live camera preview session control"
	// Empty servers list will make OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	bus := opts.EventBus
	if bus == nil {
		bus = events.New()
	}

	server := &Server{
		api:      api,
		mux:      mux,
		options:  opts,
		eventBus: bus,
		logger:   logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if server.authEnabled() {
		api.UseMiddleware(server.basicAuthMiddleware())
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}
	if opts.Surface != nil {
		mux.Handle("GET /ws/preview", server.requireAuth(opts.Surface))
	}

	server.registerRoutes()

	// Serve the preview page at root, but only for non-API paths
	if frontendHandler, err := ui.Handler(); err == nil {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api") {
				http.NotFound(w, r)
				return
			}
			frontendHandler.ServeHTTP(w, r)
		})
	}

	return server
}

// GetMux returns the underlying HTTP ServeMux for additional setup.
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance.
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start serves HTTP on addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting campreview API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop closes the server without waiting for streaming connections.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) authEnabled() bool {
	return s.options.AuthUsername != "" && s.options.AuthPassword != ""
}

// checkCredentials validates an Authorization header, falling back to the
// base64 "auth" query parameter used by EventSource and WebSocket clients.
func (s *Server) checkCredentials(authHeader, queryAuth string) (bool, string) {
	var encoded string
	switch {
	case authHeader != "":
		const prefix = "Basic "
		if !strings.HasPrefix(authHeader, prefix) {
			return false, "Invalid authentication type"
		}
		encoded = authHeader[len(prefix):]
	case queryAuth != "":
		encoded = queryAuth
	default:
		return false, "Authentication required"
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false, "Invalid credentials format"
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false, "Invalid credentials format"
	}
	if user != s.options.AuthUsername || pass != s.options.AuthPassword {
		return false, "Invalid credentials"
	}
	return true, ""
}

// basicAuthMiddleware enforces basic auth on operations that declare it.
func (s *Server) basicAuthMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		if ok, msg := s.checkCredentials(ctx.Header("Authorization"), ctx.Query("auth")); !ok {
			ctx.SetHeader("WWW-Authenticate", authRealm)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, msg)
			return
		}
		next(ctx)
	}
}

// requireAuth wraps a plain handler with the same credential check.
func (s *Server) requireAuth(h http.Handler) http.Handler {
	if !s.authEnabled() {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok, msg := s.checkCredentials(r.Header.Get("Authorization"), r.URL.Query().Get("auth")); !ok {
			w.Header().Set("WWW-Authenticate", authRealm)
			http.Error(w, msg, http.StatusUnauthorized)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
		Security:    []map[string][]string{}, // Empty security = no auth required
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		return &models.VersionResponse{Body: version.Get()}, nil
	})

	s.registerSessionRoutes()
	s.registerPreviewRoutes()
	s.registerCameraRoutes()
	s.registerDisplayRoutes()
	s.registerNoticeRoutes()
	s.registerLogRoutes()
	s.registerLEDRoutes()
	s.registerSSERoutes()
}

// withAuth returns security requirement for basic auth.
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}
