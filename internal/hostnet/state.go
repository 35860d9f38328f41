package hostnet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/openbmc-go/netipmid/internal/netcfg"
)

// stateFile persists the pieces of network configuration that have no kernel
// representation: per-link DHCP intent and the system default gateways.
// Gateways are deliberately global rather than per-link so a VLAN teardown
// cannot lose them.
type stateFile struct {
	mu   sync.Mutex
	path string
}

type stateFormat struct {
	DHCP     map[string]string `yaml:"dhcp"`
	Gateway4 string            `yaml:"gateway4"`
	Gateway6 string            `yaml:"gateway6"`
}

func newStateFile(dir string) *stateFile {
	return &stateFile{path: filepath.Join(dir, "network.yaml")}
}

// load reads the state file. A missing file is an empty state, not an error.
func (s *stateFile) load() (*stateFormat, error) {
	var st stateFormat
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading network state: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing network state: %w", err)
	}
	return &st, nil
}

func (s *stateFile) save(st *stateFormat) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding network state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing network state: %w", err)
	}
	return nil
}

// dhcpMode returns the link's DHCP intent, defaulting to none.
func (s *stateFile) dhcpMode(link string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return "", err
	}
	mode, ok := st.DHCP[link]
	if !ok {
		return netcfg.DHCPNone.String(), nil
	}
	return mode, nil
}

func (s *stateFile) setDHCPMode(link, mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	if st.DHCP == nil {
		st.DHCP = make(map[string]string)
	}
	st.DHCP[link] = mode
	return s.save(st)
}

func (s *stateFile) deleteDHCPMode(link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	delete(st.DHCP, link)
	return s.save(st)
}

// gateway reads a gateway property; the empty string means unset.
func (s *stateFile) gateway(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return "", err
	}
	switch name {
	case netcfg.PropDefaultGateway:
		return st.Gateway4, nil
	case netcfg.PropDefaultGateway6:
		return st.Gateway6, nil
	}
	return "", fmt.Errorf("%w: unknown system property %s", netcfg.ErrInternal, name)
}

func (s *stateFile) setGateway(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	switch name {
	case netcfg.PropDefaultGateway:
		st.Gateway4 = value
	case netcfg.PropDefaultGateway6:
		st.Gateway6 = value
	default:
		return fmt.Errorf("%w: unknown system property %s", netcfg.ErrInternal, name)
	}
	return s.save(st)
}
