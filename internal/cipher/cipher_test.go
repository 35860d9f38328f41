package cipher

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const defaultConfig = `
suites:
  - 3
  - 17
privileges:
  default: [4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4]
`

func TestSuites_FallsBackToDefaultFile(t *testing.T) {
	dir := t.TempDir()
	defaultPath := writeConfig(t, dir, "default.yaml", defaultConfig)
	s := NewStore(filepath.Join(dir, "state.yaml"), defaultPath, testLogger())

	suites, err := s.Suites()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 3, 17}, suites, "reserved byte leads the list")
}

func TestSuites_MissingEverywhere(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "state.yaml"), filepath.Join(dir, "default.yaml"), testLogger())
	_, err := s.Suites()
	assert.Error(t, err)
}

func TestPrivileges_DefaultRow(t *testing.T) {
	dir := t.TempDir()
	defaultPath := writeConfig(t, dir, "default.yaml", defaultConfig)
	s := NewStore(filepath.Join(dir, "state.yaml"), defaultPath, testLogger())

	privs, err := s.Privileges(1)
	require.NoError(t, err)
	for i, p := range privs {
		assert.Equal(t, uint8(PrivAdmin), p, "slot %d", i)
	}
}

func TestSetPrivileges_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	defaultPath := writeConfig(t, dir, "default.yaml", defaultConfig)
	statePath := filepath.Join(dir, "state.yaml")
	s := NewStore(statePath, defaultPath, testLogger())

	var want [MaxRecords]uint8
	for i := range want {
		want[i] = PrivOperator
	}
	require.NoError(t, s.SetPrivileges(2, want))

	got, err := s.Privileges(2)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// the write landed in the state file, carrying the default row along;
	// other channels still resolve to it
	_, err = os.Stat(statePath)
	require.NoError(t, err)
	other, err := s.Privileges(3)
	require.NoError(t, err)
	assert.Equal(t, uint8(PrivAdmin), other[0])
}

func TestSetPrivileges_RejectsOutOfRange(t *testing.T) {
	dir := t.TempDir()
	defaultPath := writeConfig(t, dir, "default.yaml", defaultConfig)
	s := NewStore(filepath.Join(dir, "state.yaml"), defaultPath, testLogger())

	var privs [MaxRecords]uint8
	privs[5] = PrivOEM + 1
	err := s.SetPrivileges(1, privs)
	assert.ErrorIs(t, err, ErrInvalidPrivilege)
}
