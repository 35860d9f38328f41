package sol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Defaults(t *testing.T) {
	s := NewState(115200)

	cfg := s.Snapshot(1)
	assert.Equal(t, defaultSettings, cfg)

	baud, err := s.BaudRate()
	require.NoError(t, err)
	assert.Equal(t, uint32(115200), baud)
}

func TestState_ChannelsAreIndependent(t *testing.T) {
	s := NewState(115200)

	require.NoError(t, s.SetEnabled(1, false))
	require.NoError(t, s.SetPrivilege(1, 4))

	enabled, err := s.Enabled(1)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = s.Enabled(2)
	require.NoError(t, err)
	assert.True(t, enabled, "channel 2 keeps its defaults")
	privilege, err := s.Privilege(2)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), privilege)
}

func TestState_Setters(t *testing.T) {
	s := NewState(9600)

	require.NoError(t, s.SetProgress(1, 2))
	progress, err := s.Progress(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), progress)

	require.NoError(t, s.SetAccumulate(1, 20, 5))
	interval, threshold, err := s.Accumulate(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(20), interval)
	assert.Equal(t, uint8(5), threshold)

	require.NoError(t, s.SetRetry(1, 3, 50))
	count, retryInterval, err := s.Retry(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), count)
	assert.Equal(t, uint8(50), retryInterval)

	forceAuth, err := s.ForceAuthentication(1)
	require.NoError(t, err)
	assert.True(t, forceAuth)
	forceEncrypt, err := s.ForceEncryption(1)
	require.NoError(t, err)
	assert.True(t, forceEncrypt)
}
