package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

const (
	defaultServerPort = 4222
	readyTimeout      = 5 * time.Second

	// Session events and control messages are small JSON documents.
	maxPayload = 64 * 1024
)

// ServerOptions configures the embedded broker.
type ServerOptions struct {
	Port   int // -1 picks a free port
	Host   string
	Name   string
	Debug  bool // forward the broker's debug output
	Logger *slog.Logger
}

// Server is a NATS broker running inside the campreview process, for
// deployments without an external one.
type Server struct {
	ns     *server.Server
	opts   ServerOptions
	logger *slog.Logger
}

// NewServer prepares a broker on 127.0.0.1:4222 unless told otherwise.
func NewServer(opts ServerOptions) *Server {
	if opts.Port == 0 {
		opts.Port = defaultServerPort
	}
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.Name == "" {
		opts.Name = SubjectPrefix
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{opts: opts, logger: logger.With("component", "nats-server")}
}

// Start runs the broker and waits until it accepts connections.
func (s *Server) Start() error {
	ns, err := server.NewServer(&server.Options{
		Host:       s.opts.Host,
		Port:       s.opts.Port,
		ServerName: s.opts.Name,
		NoSigs:     true,
		MaxPayload: maxPayload,
	})
	if err != nil {
		return fmt.Errorf("create NATS server: %w", err)
	}
	ns.SetLogger(&serverLogger{logger: s.logger}, s.opts.Debug, false)

	go ns.Start()
	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return errors.New("NATS server not ready within " + readyTimeout.String())
	}

	s.ns = ns
	s.logger.Info("NATS server started", "url", ns.ClientURL())
	return nil
}

// Stop shuts the broker down and waits for it to finish.
func (s *Server) Stop() {
	if s.ns == nil {
		return
	}
	s.logger.Info("Stopping NATS server", "connections", s.ns.NumClients())
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
	s.ns = nil
}

// ClientURL returns the URL clients connect to.
func (s *Server) ClientURL() string {
	if s.ns == nil {
		return fmt.Sprintf("nats://%s:%d", s.opts.Host, s.opts.Port)
	}
	return s.ns.ClientURL()
}

// IsRunning reports whether the broker accepts connections.
func (s *Server) IsRunning() bool {
	return s.ns != nil && s.ns.Running()
}

// serverLogger forwards broker output to slog.
type serverLogger struct {
	logger *slog.Logger
}

func (l *serverLogger) log(level slog.Level, format string, v ...any) {
	l.logger.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

func (l *serverLogger) Noticef(format string, v ...any) { l.log(slog.LevelDebug, format, v...) }
func (l *serverLogger) Warnf(format string, v ...any)   { l.log(slog.LevelWarn, format, v...) }
func (l *serverLogger) Fatalf(format string, v ...any)  { l.log(slog.LevelError, format, v...) }
func (l *serverLogger) Errorf(format string, v ...any)  { l.log(slog.LevelError, format, v...) }
func (l *serverLogger) Debugf(format string, v ...any)  { l.log(slog.LevelDebug, format, v...) }
func (l *serverLogger) Tracef(format string, v ...any)  { l.log(slog.LevelDebug, format, v...) }
