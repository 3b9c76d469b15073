// -----------------------------------------------------------------------
// Session Manager - Crash-resistant headless browser session lifecycle
// -----------------------------------------------------------------------

package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/models"
)

// State is the lifecycle position of the browser session
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateCrashed       State = "crashed"
	StateClosed        State = "closed"
)

// Driver is one browser instance. Implementations are not safe for concurrent use;
// the Manager serializes every call.
type Driver interface {
	Start(ctx context.Context) error
	Navigate(ctx context.Context, url string) (string, error)
	Close() error
}

// DriverFactory builds a fresh, unstarted Driver with identical configuration each time
type DriverFactory func() Driver

// ManagerConfig holds retry settings for crash recovery
type ManagerConfig struct {
	MaxRetries  int           // Crash-triggered restarts per navigation
	SettleDelay time.Duration // Pause after a restart before navigating again
}

// NewManagerConfig resolves the browser section of the application config
func NewManagerConfig(config common.BrowserConfig) ManagerConfig {
	return ManagerConfig{
		MaxRetries:  config.MaxRetries,
		SettleDelay: common.ParseDuration(config.SettleDelay, 3*time.Second),
	}
}

// Stats counts session activity for diagnostics
type Stats struct {
	Navigations     int `json:"navigations"`
	Crashes         int `json:"crashes"`
	Restarts        int `json:"restarts"`         // Successful restarts
	RestartFailures int `json:"restart_failures"` // Restart attempts whose driver did not start
}

// Manager owns exactly one browser session and is its only holder of state.
//
// Lifecycle:
//
//	Uninitialized -> Ready             Start succeeded
//	Ready         -> Crashed           navigation failed with a crash-class error
//	Crashed       -> Ready             Restart rebuilt the driver
//	Crashed       -> Closed            Restart failed on every attempt
//	Ready|Crashed -> Closed            Close
type Manager struct {
	mu      sync.Mutex
	config  ManagerConfig
	factory DriverFactory
	driver  Driver
	state   State
	stats   Stats
	logger  arbor.ILogger
}

// NewManager creates a manager that can restart its driver through factory
func NewManager(config ManagerConfig, factory DriverFactory, logger arbor.ILogger) *Manager {
	return &Manager{
		config:  config,
		factory: factory,
		state:   StateUninitialized,
		logger:  logger,
	}
}

// NewManagerWithDriver wraps an existing driver. Without a factory the manager
// has no restart capability: a crash ends the navigation with ok=false.
func NewManagerWithDriver(config ManagerConfig, driver Driver, logger arbor.ILogger) *Manager {
	return &Manager{
		config: config,
		driver: driver,
		state:  StateUninitialized,
		logger: logger,
	}
}

// StartManager builds a chromedp-backed manager from the browser config and starts it
func StartManager(ctx context.Context, config common.BrowserConfig, logger arbor.ILogger) (*Manager, error) {
	driverConfig := NewChromeDriverConfig(config)
	if driverConfig.ExecPath == "" {
		driverConfig.ExecPath = FindChromeExecPath()
	}
	if driverConfig.ExecPath != "" {
		logger.Info().Str("exec_path", driverConfig.ExecPath).Msg("Chrome binary resolved")
	} else {
		logger.Info().Msg("No Chrome binary in known locations, using PATH lookup")
	}

	factory := NewChromeDriverFactory(driverConfig, logger)
	manager := NewManager(NewManagerConfig(config), factory, logger)
	if err := manager.Start(ctx); err != nil {
		return nil, err
	}
	return manager, nil
}

// Start launches the session. Uninitialized -> Ready.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateUninitialized {
		return fmt.Errorf("browser session cannot start from state %s", m.state)
	}

	if m.driver == nil {
		if m.factory == nil {
			return fmt.Errorf("%w: no driver or driver factory configured", models.ErrSessionUnavailable)
		}
		m.driver = m.factory()
	}

	if err := m.driver.Start(ctx); err != nil {
		m.closeDriverLocked()
		return fmt.Errorf("%w: %v", models.ErrSessionUnavailable, err)
	}

	m.state = StateReady
	m.logger.Info().
		Int("max_retries", m.config.MaxRetries).
		Msg("Browser session ready")

	return nil
}

// SafeNavigate loads url and returns its markup.
//
// Crash-class failures trigger Restart and a re-navigation, up to MaxRetries
// times, with SettleDelay after each restart. Ordinary failures (timeouts,
// DNS, bad status) are not retried. ok is false when the page could not be
// loaded or the session has no restart capability.
func (m *Manager) SafeNavigate(ctx context.Context, url string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateReady:
	case StateCrashed:
		// Left crashed by an earlier call that ran out of retries
		if err := m.restartLocked(ctx); err != nil {
			m.logger.Warn().Err(err).Str("url", url).Msg("Browser session could not be recovered")
			return "", false
		}
	default:
		m.logger.Warn().Str("state", string(m.state)).Str("url", url).Msg("Browser session not ready")
		return "", false
	}

	for attempt := 0; ; attempt++ {
		m.stats.Navigations++
		m.logger.Debug().Str("url", url).Int("attempt", attempt+1).Msg("Navigating")

		html, err := m.driver.Navigate(ctx, url)
		if err == nil {
			return html, true
		}

		if !IsCrashError(err) {
			m.logger.Warn().Err(err).Str("url", url).Msg("Navigation failed")
			return "", false
		}

		m.stats.Crashes++
		m.state = StateCrashed
		m.logger.Warn().
			Err(err).
			Str("url", url).
			Int("retry", attempt+1).
			Int("max_retries", m.config.MaxRetries).
			Msg("Browser crashed during navigation")

		if m.factory == nil {
			m.logger.Warn().Msg("No restart capability, giving up on navigation")
			return "", false
		}
		if attempt >= m.config.MaxRetries {
			m.logger.Warn().Str("url", url).Msg("Crash retries exhausted")
			return "", false
		}

		if err := m.restartLocked(ctx); err != nil {
			m.logger.Error().Err(err).Msg("Browser restart failed")
			return "", false
		}

		if err := sleepContext(ctx, m.config.SettleDelay); err != nil {
			return "", false
		}
	}
}

// Restart tears down the current driver and builds a new one with identical
// configuration. After MaxRetries failed attempts (at least one) the session is Closed.
func (m *Manager) Restart(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restartLocked(ctx)
}

// restartLocked must be called with m.mu held
func (m *Manager) restartLocked(ctx context.Context) error {
	if m.factory == nil {
		return fmt.Errorf("%w: no restart capability", models.ErrSessionUnavailable)
	}
	if m.state == StateClosed {
		return fmt.Errorf("%w: session closed", models.ErrSessionUnavailable)
	}

	attempts := m.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		m.closeDriverLocked()

		driver := m.factory()
		if err := driver.Start(ctx); err != nil {
			lastErr = err
			m.stats.RestartFailures++
			m.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", attempts).
				Msg("Browser restart attempt failed")
			if closeErr := driver.Close(); closeErr != nil {
				m.logger.Debug().Err(closeErr).Msg("Failed to close driver after failed start")
			}
			continue
		}

		m.driver = driver
		m.state = StateReady
		m.stats.Restarts++
		m.logger.Info().Int("attempt", attempt).Msg("Browser restarted")
		return nil
	}

	m.state = StateClosed
	return fmt.Errorf("%w: restart failed: %v", models.ErrSessionUnavailable, lastErr)
}

// Close shuts the session down. Errors are logged and returned but the
// session is Closed either way; calling Close again is a no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateClosed {
		return nil
	}

	err := m.closeDriverLocked()
	m.state = StateClosed
	m.logger.Debug().Int("navigations", m.stats.Navigations).
		Int("crashes", m.stats.Crashes).
		Int("restarts", m.stats.Restarts).
		Int("restart_failures", m.stats.RestartFailures).
		Msg("Browser session closed")

	return err
}

// closeDriverLocked must be called with m.mu held
func (m *Manager) closeDriverLocked() error {
	if m.driver == nil {
		return nil
	}
	err := m.driver.Close()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Error closing browser driver")
	}
	m.driver = nil
	return err
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stats returns a snapshot of session counters
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
