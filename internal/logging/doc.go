// Package logging provides structured logging with per-module log level configuration.
//
// Records go to stdout when it is a terminal, pipe, socket or file, to the
// systemd journal when journald is running, and always to an in-memory
// ring buffer that backs the /api/logs endpoint and the SSE log stream.
//
// Initialize once at startup, then get a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"session": "debug",
//			"api":     "warn",
//		},
//	})
//
//	logger := logging.GetLogger("session")
//	logger.Info("Camera selected", "camera", id)
//
// Loggers obtained before Initialize are kept and switched to the
// configured level and format.
//
// Journal entries are tagged with SYSLOG_IDENTIFIER=campreview and carry
// every attribute as an upper-case field:
//
//	journalctl -t campreview -f
//	journalctl -t campreview MODULE=session
//	journalctl -t campreview CAMERA=/dev/video0
//
// TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	session = "debug"
//	v4l2cam = "debug"
package logging
