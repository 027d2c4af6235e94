package nats

import (
	"encoding/json"
	"fmt"
)

// Subjects for session events and control commands.
const (
	SubjectPrefix          = "campreview"
	SubjectSessionState    = SubjectPrefix + ".session.state"
	SubjectPreviewSelected = SubjectPrefix + ".preview.selected"
	SubjectNotices         = SubjectPrefix + ".notices"
	SubjectErrors          = SubjectPrefix + ".errors"
	SubjectControlPrefix   = SubjectPrefix + ".control"
)

// Control actions.
const (
	ActionResume = "resume"
	ActionPause  = "pause"
)

// SubjectControl returns the subject for a control action.
func SubjectControl(action string) string {
	return fmt.Sprintf("%s.%s", SubjectControlPrefix, action)
}

// ControlMessage is a lifecycle command sent to the session.
type ControlMessage struct {
	Action    string `json:"action"` // resume or pause
	Timestamp string `json:"timestamp,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Marshal serializes the message to JSON.
func (m ControlMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalControl deserializes a ControlMessage from JSON.
func UnmarshalControl(data []byte) (ControlMessage, error) {
	var m ControlMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
