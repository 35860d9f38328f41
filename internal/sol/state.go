// Package sol holds the serial-over-LAN settings served through the SOL
// configuration parameter commands and consumed by the console bridge.
package sol

import "sync"

// Settings holds one channel's SOL configuration.
type Settings struct {
	Progress            uint8
	Enabled             bool
	Privilege           uint8
	ForceAuthentication bool
	ForceEncryption     bool
	AccumulateInterval  uint8
	SendThreshold       uint8
	RetryCount          uint8
	RetryIntervalMS     uint8
}

// defaultSettings mirror the values a factory-reset BMC reports.
var defaultSettings = Settings{
	Enabled:             true,
	Privilege:           2, // User
	ForceAuthentication: true,
	ForceEncryption:     true,
	AccumulateInterval:  4,
	SendThreshold:       1,
	RetryCount:          7,
	RetryIntervalMS:     10,
}

// State manages per-channel SOL settings and the shared console baud rate.
// All methods are safe for concurrent use.
type State struct {
	mu       sync.RWMutex
	channels map[uint8]*Settings
	baudRate uint32
}

// NewState creates a State reporting the given console baud rate.
func NewState(baudRate uint32) *State {
	return &State{
		channels: make(map[uint8]*Settings),
		baudRate: baudRate,
	}
}

// settings returns the channel's entry, creating it from defaults on first
// touch. Callers hold s.mu.
func (s *State) settings(channel uint8) *Settings {
	cfg, ok := s.channels[channel]
	if !ok {
		def := defaultSettings
		cfg = &def
		s.channels[channel] = cfg
	}
	return cfg
}

// Snapshot returns a copy of the channel's settings.
func (s *State) Snapshot(channel uint8) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.settings(channel)
}

func (s *State) Progress(channel uint8) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings(channel).Progress, nil
}

func (s *State) SetProgress(channel uint8, v uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings(channel).Progress = v
	return nil
}

func (s *State) Enabled(channel uint8) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings(channel).Enabled, nil
}

func (s *State) SetEnabled(channel uint8, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings(channel).Enabled = v
	return nil
}

func (s *State) Privilege(channel uint8) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings(channel).Privilege, nil
}

func (s *State) SetPrivilege(channel uint8, v uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings(channel).Privilege = v
	return nil
}

func (s *State) ForceAuthentication(channel uint8) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings(channel).ForceAuthentication, nil
}

func (s *State) ForceEncryption(channel uint8) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings(channel).ForceEncryption, nil
}

func (s *State) Accumulate(channel uint8) (uint8, uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.settings(channel)
	return cfg.AccumulateInterval, cfg.SendThreshold, nil
}

func (s *State) SetAccumulate(channel uint8, interval, threshold uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.settings(channel)
	cfg.AccumulateInterval = interval
	cfg.SendThreshold = threshold
	return nil
}

func (s *State) Retry(channel uint8) (uint8, uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.settings(channel)
	return cfg.RetryCount, cfg.RetryIntervalMS, nil
}

func (s *State) SetRetry(channel uint8, count, intervalMS uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.settings(channel)
	cfg.RetryCount = count
	cfg.RetryIntervalMS = intervalMS
	return nil
}

// BaudRate reports the console baud rate shared by all channels.
func (s *State) BaudRate() (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baudRate, nil
}
