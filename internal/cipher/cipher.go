// Package cipher persists the RMCP+ cipher-suite list and the per-channel
// minimum privilege level table backing LAN parameters 22 through 24.
package cipher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// MaxRecords is the number of cipher-suite privilege slots per channel, fixed
// by the wire encoding of the privilege-level parameter.
const MaxRecords = 16

// Privilege levels as encoded in the 4-bit table entries.
const (
	PrivUnspecified = 0
	PrivCallback    = 1
	PrivUser        = 2
	PrivOperator    = 3
	PrivAdmin       = 4
	PrivOEM         = 5
)

// ErrInvalidPrivilege reports a table entry outside the defined range.
var ErrInvalidPrivilege = errors.New("privilege level out of range")

// defaultKey holds the fallback privilege row applied to channels without an
// explicit entry.
const defaultKey = "default"

type fileFormat struct {
	Suites     []uint8            `yaml:"suites"`
	Privileges map[string][]uint8 `yaml:"privileges"`
}

// Store loads cipher configuration from a writable state file, falling back
// to a read-only distribution default, and writes updates back to the state
// file.
type Store struct {
	mu          sync.Mutex
	path        string
	defaultPath string
	log         *slog.Logger
}

// NewStore creates a store over the given state file and fallback file.
func NewStore(path, defaultPath string, log *slog.Logger) *Store {
	return &Store{path: path, defaultPath: defaultPath, log: log}
}

// load reads the state file, or the default file when the state file does
// not exist yet.
func (s *Store) load() (*fileFormat, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		data, err = os.ReadFile(s.defaultPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading cipher config: %w", err)
	}
	var cfg fileFormat
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing cipher config: %w", err)
	}
	return &cfg, nil
}

func (s *Store) save(cfg *fileFormat) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding cipher config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing cipher config: %w", err)
	}
	return nil
}

// Suites returns the cipher-suite entry list in wire form: a leading
// reserved byte followed by the supported suite ids. The supported-count
// parameter reports len-1.
func (s *Store) Suites() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(cfg.Suites)+1)
	out = append(out, 0x00)
	return append(out, cfg.Suites...), nil
}

// Privileges returns the channel's privilege table, falling back to the
// default row, then to all-unspecified.
func (s *Store) Privileges(channel uint8) ([MaxRecords]uint8, error) {
	var out [MaxRecords]uint8
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.load()
	if err != nil {
		return out, err
	}
	row, ok := cfg.Privileges[strconv.Itoa(int(channel))]
	if !ok {
		row = cfg.Privileges[defaultKey]
	}
	copy(out[:], row)
	return out, nil
}

// SetPrivileges validates and stores the channel's privilege table.
func (s *Store) SetPrivileges(channel uint8, privs [MaxRecords]uint8) error {
	for i, p := range privs {
		if p > PrivOEM {
			return fmt.Errorf("%w: slot %d has level %d", ErrInvalidPrivilege, i, p)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Privileges == nil {
		cfg.Privileges = make(map[string][]uint8)
	}
	cfg.Privileges[strconv.Itoa(int(channel))] = append([]uint8(nil), privs[:]...)
	if err := s.save(cfg); err != nil {
		return err
	}
	s.log.Info("updated cipher suite privileges", "channel", channel)
	return nil
}
