// Package models holds the request and response bodies of the HTTP API.
package models

import (
	"github.com/smazurov/campreview/internal/camera"
	"github.com/smazurov/campreview/internal/notice"
	"github.com/smazurov/campreview/internal/session"
	"github.com/smazurov/campreview/internal/version"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

type VersionResponse struct {
	Body version.Info
}

// Session models

type SessionResponse struct {
	Body session.Snapshot
}

type SurfaceRequest struct {
	Body struct {
		Width  int `json:"width" minimum:"1" example:"1920" doc:"Surface width in pixels"`
		Height int `json:"height" minimum:"1" example:"1080" doc:"Surface height in pixels"`
	}
}

type PermissionRequest struct {
	Body struct {
		Granted bool `json:"granted" example:"true" doc:"Whether camera access was granted"`
	}
}

type PermissionData struct {
	Pending  bool   `json:"pending" doc:"Whether a request is waiting for an answer"`
	CameraID string `json:"camera_id,omitempty" example:"/dev/video0" doc:"Camera the pending request is for"`
}

type PermissionResponse struct {
	Body PermissionData
}

// Camera models

type CamerasRequest struct {
	Width  int `query:"width" minimum:"0" example:"1920" doc:"Surface width used to pick the preview size"`
	Height int `query:"height" minimum:"0" example:"1080" doc:"Surface height used to pick the preview size"`
}

type CameraData struct {
	ID                camera.Identity     `json:"id" example:"/dev/video0" doc:"Camera identity"`
	Name              string              `json:"name,omitempty" example:"UVC Camera" doc:"Driver card name"`
	LensFacing        camera.LensFacing   `json:"lens_facing,omitempty" example:"external" doc:"Direction the lens faces"`
	SensorOrientation camera.Angle        `json:"sensor_orientation" example:"0" doc:"Sensor mounting orientation"`
	OutputSizes       []camera.Resolution `json:"output_sizes,omitempty" doc:"Supported preview sizes"`
	Rotation          camera.Angle        `json:"rotation" example:"90" doc:"Total rotation for the current display"`
	PreviewSize       *camera.Resolution  `json:"preview_size,omitempty" doc:"Size that would be chosen for the requested surface"`
	Selectable        bool                `json:"selectable" doc:"Whether the session would consider this camera"`
	Error             string              `json:"error,omitempty" doc:"Why characteristics or sizes could not be read"`
}

type CamerasData struct {
	Cameras []CameraData `json:"cameras" doc:"Cameras known to the service"`
	Count   int          `json:"count" example:"1" doc:"Number of cameras"`
}

type CamerasResponse struct {
	Body CamerasData
}

// Display models

type DisplayData struct {
	Rotation int `json:"rotation" enum:"0,90,180,270" example:"90" doc:"Display rotation in degrees"`
}

type DisplayRequest struct {
	Body DisplayData
}

type DisplayResponse struct {
	Body DisplayData
}

// Notice models

type NoticesRequest struct {
	Limit int `query:"limit" minimum:"0" default:"20" doc:"Maximum number of notices"`
}

type NoticesResponse struct {
	Body struct {
		Notices []notice.Notice `json:"notices" doc:"Recent notices, oldest first"`
	}
}

// Log models

type LogsRequest struct {
	Limit int `query:"limit" minimum:"0" default:"200" doc:"Maximum number of entries, 0 for all"`
}

type LogEntry struct {
	Seq        uint64         `json:"seq" doc:"Sequence number"`
	Timestamp  string         `json:"timestamp" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"session" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
	Line       string         `json:"line" doc:"Entry rendered as a single text line"`
}

type LogsResponse struct {
	Body struct {
		Entries []LogEntry `json:"entries" doc:"Most recent log entries, oldest first"`
	}
}

// LED models

type LEDResponse struct {
	Body struct {
		Available []string `json:"available" doc:"Logical LEDs on this board"`
		Pattern   string   `json:"pattern" example:"solid" doc:"Pattern currently shown on the status LED"`
	}
}

// Preview models

type SnapshotResponse struct {
	ContentType  string `header:"Content-Type"`
	LastModified string `header:"Last-Modified"`
	Age          string `header:"X-Frame-Age" doc:"Time since the frame was captured"`
	Body         []byte
}
