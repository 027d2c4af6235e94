package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/campreview/internal/events"
)

// PatternFor maps a session state to the status LED pattern.
func PatternFor(state string) Pattern {
	switch state {
	case "streaming":
		return PatternSolid
	case "error":
		return PatternBlink
	default:
		return PatternOff
	}
}

// Manager subscribes to session state events and drives the status LED.
type Manager struct {
	controller  Controller
	eventBus    *events.Bus
	logger      *slog.Logger
	unsubscribe func()

	mu      sync.Mutex
	current Pattern
}

// NewManager creates an LED manager.
func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Start turns the LED off and begins following session state.
func (m *Manager) Start() {
	m.apply(PatternOff)
	m.unsubscribe = m.eventBus.Subscribe(func(e events.SessionStateChangedEvent) {
		m.handleEvent(e)
	})
	m.logger.Info("LED manager started")
}

// Stop unsubscribes and turns the LED off.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.apply(PatternOff)
	m.logger.Info("LED manager stopped")
}

// Pattern returns the pattern last applied.
func (m *Manager) Pattern() Pattern {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) handleEvent(e events.SessionStateChangedEvent) {
	m.logger.Debug("Session state changed", "from", e.From, "to", e.GetState())
	m.apply(PatternFor(e.GetState()))
}

func (m *Manager) apply(p Pattern) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == p {
		return
	}
	if err := m.controller.Set(StatusLED, p); err != nil {
		m.logger.Warn("Failed to set status LED", "pattern", p, "error", err)
		return
	}
	m.current = p
}

// GetController returns the underlying LED controller.
func (m *Manager) GetController() Controller {
	return m.controller
}
