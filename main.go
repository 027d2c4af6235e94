package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/campreview/cmd"
	"github.com/smazurov/campreview/internal/api"
	"github.com/smazurov/campreview/internal/camera"
	"github.com/smazurov/campreview/internal/config"
	"github.com/smazurov/campreview/internal/display"
	"github.com/smazurov/campreview/internal/events"
	"github.com/smazurov/campreview/internal/led"
	"github.com/smazurov/campreview/internal/logging"
	"github.com/smazurov/campreview/internal/metrics"
	"github.com/smazurov/campreview/internal/metrics/exporters"
	"github.com/smazurov/campreview/internal/nats"
	"github.com/smazurov/campreview/internal/notice"
	"github.com/smazurov/campreview/internal/permission"
	"github.com/smazurov/campreview/internal/session"
	"github.com/smazurov/campreview/internal/surface"
	"github.com/smazurov/campreview/internal/systemd"
	"github.com/smazurov/campreview/internal/v4l2cam"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Camera settings
	CameraProfiles    string `help:"Camera profile file (display rotation and per-camera overrides)" default:"profiles.toml" toml:"camera.profiles" env:"CAMERA_PROFILES"`
	CameraBufferCount int    `help:"Number of V4L2 capture buffers" default:"4" toml:"camera.buffer_count" env:"CAMERA_BUFFER_COUNT"`
	CameraAutoResume  bool   `help:"Resume the session at startup" default:"false" toml:"camera.auto_resume" env:"CAMERA_AUTO_RESUME"`

	// Permission settings
	PermissionManual bool `help:"Wait for POST /api/permission instead of probing device access" default:"false" toml:"permission.manual" env:"PERMISSION_MANUAL"`

	// Preview settings
	PreviewQueueSize int `help:"Frames queued per preview client before dropping" default:"2" toml:"preview.queue_size" env:"PREVIEW_QUEUE_SIZE"`
	NoticeHistory    int `help:"Number of notices kept for the API" default:"50" toml:"preview.notice_history" env:"PREVIEW_NOTICE_HISTORY"`

	// Observability settings
	ObsPrometheusEnabled bool `help:"Enable Prometheus" default:"true" toml:"obs.prometheus_enabled" env:"OBS_PROMETHEUS_ENABLED"`
	ObsSSEEnabled        bool `help:"Enable SSE metrics" default:"true" toml:"obs.sse_enabled" env:"OBS_SSE_ENABLED"`

	// NATS settings
	NatsURL      string `help:"NATS server for session events and remote control, empty to disable" default:"" toml:"nats.url" env:"NATS_URL"`
	NatsEmbedded bool   `help:"Run an embedded NATS server" default:"false" toml:"nats.embedded" env:"NATS_EMBEDDED"`
	NatsPort     int    `help:"Embedded NATS server port" default:"4222" toml:"nats.port" env:"NATS_PORT"`

	// Features settings
	FeaturesLEDControl bool   `help:"Enable LED control" default:"false" toml:"features.led_control_enabled" env:"FEATURES_LED_CONTROL"`
	FeaturesLEDName    string `help:"Sysfs LED name, empty to detect from the board" default:"" toml:"features.led_name" env:"FEATURES_LED_NAME"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingSession    string `help:"Session logging level" default:"info" toml:"logging.session" env:"LOGGING_SESSION"`
	LoggingLooper     string `help:"Looper logging level" default:"info" toml:"logging.looper" env:"LOGGING_LOOPER"`
	LoggingV4L2Cam    string `help:"V4L2 camera logging level" default:"info" toml:"logging.v4l2cam" env:"LOGGING_V4L2CAM"`
	LoggingPermission string `help:"Permission logging level" default:"info" toml:"logging.permission" env:"LOGGING_PERMISSION"`
	LoggingSurface    string `help:"Preview surface logging level" default:"info" toml:"logging.surface" env:"LOGGING_SURFACE"`
	LoggingConfig     string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
	LoggingAPI        string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP       string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"session":    opts.LoggingSession,
				"looper":     opts.LoggingLooper,
				"v4l2cam":    opts.LoggingV4L2Cam,
				"permission": opts.LoggingPermission,
				"surface":    opts.LoggingSurface,
				"config":     opts.LoggingConfig,
				"api":        opts.LoggingAPI,
				"http":       opts.LoggingHTTP,
			},
		})
		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Seq:        entry.Seq,
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		profiles, err := config.LoadProfiles(opts.CameraProfiles)
		if err != nil {
			logger.Warn("Failed to load camera profiles, using defaults", "path", opts.CameraProfiles, "error", err)
		}
		profileStore := config.NewProfileStore(profiles)
		displayProvider := display.New(profiles.DisplayRotation())

		profileWatcher := config.NewConfigWatcher(opts.CameraProfiles, config.LoadProfiles, logging.GetLogger("config"),
			config.WithErrorHandler[config.Profiles](func(err error) {
				logger.Warn("Camera profiles not reloaded", "error", err)
			}))
		profileWatcher.OnReload(func(p config.Profiles) {
			profileStore.Set(p)
			if displayProvider.Set(p.DisplayRotation()) {
				logger.Info("Display rotation reloaded", "rotation", p.Display.Rotation)
			}
		})

		cameras := v4l2cam.NewService(v4l2cam.Options{
			Profiles:    cmd.ProfileOverrides(profileStore),
			OnFrame:     func(id camera.Identity, size int) { metrics.RecordFrame(string(id), size) },
			BufferCount: uint32(max(opts.CameraBufferCount, 0)),
			Logger:      logging.GetLogger("v4l2cam"),
		})

		preview := surface.NewWebSocket(surface.Options{
			QueueSize: opts.PreviewQueueSize,
			OnClients: metrics.SetPreviewClients,
			OnDrop:    metrics.RecordDroppedFrame,
			Logger:    logging.GetLogger("surface"),
		})

		broker := permission.NewBroker(permission.Options{
			Manual: opts.PermissionManual,
			Logger: logging.GetLogger("permission"),
		})
		notices := notice.NewCenter(eventBus, logging.GetLogger("notice"), opts.NoticeHistory)

		var controller *session.Controller
		controller = session.NewController(&session.Options{
			Service:     cameras,
			Permissions: broker,
			Display:     displayProvider,
			Notifier:    notices,
			OnStateChange: func(from, to session.State) {
				metrics.RecordTransition(string(from), string(to))
				snap := controller.Snapshot()
				eventBus.Publish(events.SessionStateChangedEvent{
					SessionID: snap.SessionID,
					CameraID:  string(snap.CameraID),
					From:      string(from),
					To:        string(to),
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				})
			},
			OnPreviewSelected: func(id camera.Identity, size camera.Resolution, rotation camera.Angle) {
				metrics.SetPreviewSize(string(id), size.Width, size.Height)
				eventBus.Publish(events.PreviewSelectedEvent{
					CameraID:  string(id),
					Width:     size.Width,
					Height:    size.Height,
					Rotation:  int(rotation),
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				})
			},
			OnError: func(err error) {
				code := camera.CodeOf(err)
				metrics.RecordFailure(string(code))
				eventBus.Publish(events.CameraErrorEvent{
					Code:      string(code),
					Message:   err.Error(),
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				})
			},
			Logger: logging.GetLogger("session"),
		})
		broker.SetResultHandler(controller.OnPermissionResult)

		// Initialize LED control if enabled
		var ledManager *led.Manager
		if opts.FeaturesLEDControl {
			logger.Info("LED control enabled, initializing")
			ledManager = led.NewManager(led.New(logger, opts.FeaturesLEDName), eventBus, logger)
		}

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Controller:   controller,
			Cameras:      cameras,
			Surface:      preview,
			Permissions:  broker,
			Display:      displayProvider,
			Notices:      notices,
			EventBus:     eventBus,
		}
		if opts.ObsPrometheusEnabled {
			apiOpts.PrometheusHandler = exporters.HTTPHandler()
		}
		if ledManager != nil {
			apiOpts.LEDs = ledManager
		}
		server := api.NewServer(apiOpts)

		var natsServer *nats.Server
		if opts.NatsEmbedded {
			natsServer = nats.NewServer(nats.ServerOptions{Port: opts.NatsPort, Logger: logging.GetLogger("nats")})
		}
		var natsBridge *nats.Bridge

		sdNotifier := systemd.NewNotifier(logging.GetLogger("systemd"))
		sdNotifier.FollowSession(eventBus)

		var sseExporter *exporters.SSEExporter
		if opts.ObsSSEEnabled {
			sseExporter = exporters.NewSSEExporter(eventBus)
		}

		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			if startErr := profileWatcher.Start(); startErr != nil {
				logger.Warn("Camera profile watcher not started", "path", opts.CameraProfiles, "error", startErr)
			}

			natsURL := opts.NatsURL
			if natsServer != nil {
				if startErr := natsServer.Start(); startErr != nil {
					logger.Error("Failed to start embedded NATS server", "error", startErr)
					os.Exit(1)
				}
				if natsURL == "" {
					natsURL = natsServer.ClientURL()
				}
			}
			if natsURL != "" {
				natsBridge = nats.NewBridge(natsURL, eventBus, controller, logging.GetLogger("nats"))
				if startErr := natsBridge.Start(); startErr != nil {
					logger.Warn("NATS bridge not started", "error", startErr)
				}
			}

			go func() {
				if watchErr := cameras.WatchHotplug(ctx); watchErr != nil && !errors.Is(watchErr, context.Canceled) {
					logger.Warn("Hotplug monitoring stopped", "error", watchErr)
				}
			}()

			if sseExporter != nil {
				sseExporter.Start(ctx)
			}
			if ledManager != nil {
				ledManager.Start()
			}
			if opts.CameraAutoResume {
				controller.OnResume()
			}

			go sdNotifier.RunWatchdog(ctx, nil)
			sdNotifier.Ready()

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			sdNotifier.Stopping()
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			// Release the camera before the frame consumers go away
			controller.OnPause()
			broker.Wait()
			preview.Close()

			cancel()
			if sseExporter != nil {
				sseExporter.Stop()
			}
			if ledManager != nil {
				ledManager.Stop()
			}
			if stopErr := profileWatcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping profile watcher", "error", stopErr)
			}
			if natsBridge != nil {
				natsBridge.Stop()
			}
			if natsServer != nil {
				natsServer.Stop()
			}
			sdNotifier.Stop()
		})
	})

	cli.Root().AddCommand(cmd.CreateCamerasCmd())
	cli.Root().AddCommand(cmd.CreateControlCmd())

	// Run the CLI
	cli.Run()
}
