//go:build integration

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSOL_Info(t *testing.T) {
	env := loadTestEnv()

	out, err := runIPMITool(env.IPMIHost, env.User, env.Pass, "sol", "info", env.Channel)
	require.NoError(t, err, "ipmitool output: %s", out)

	assert.Equal(t, "true", printField(out, "Enabled"))
	assert.Equal(t, "623", printField(out, "Payload Port"))
	assert.Contains(t, printField(out, "Payload Channel"), env.Channel)
	assert.NotEmpty(t, printField(out, "Volatile Bit Rate (kbps)"))
}

func TestSOL_RetryRoundTrip(t *testing.T) {
	env := loadTestEnv()

	out, err := runIPMITool(env.IPMIHost, env.User, env.Pass, "sol", "info", env.Channel)
	require.NoError(t, err, "ipmitool output: %s", out)
	original := printField(out, "Retry Count")
	require.NotEmpty(t, original)

	out, err = runIPMITool(env.IPMIHost, env.User, env.Pass,
		"sol", "set", "retry-count", "5", env.Channel)
	require.NoError(t, err, "ipmitool output: %s", out)

	out, err = runIPMITool(env.IPMIHost, env.User, env.Pass, "sol", "info", env.Channel)
	require.NoError(t, err, "ipmitool output: %s", out)
	assert.Equal(t, "5", printField(out, "Retry Count"))

	out, err = runIPMITool(env.IPMIHost, env.User, env.Pass,
		"sol", "set", "retry-count", original, env.Channel)
	require.NoError(t, err, "ipmitool output: %s", out)
}

func TestSOL_PayloadPortReadOnly(t *testing.T) {
	env := loadTestEnv()

	out, err := runIPMITool(env.IPMIHost, env.User, env.Pass,
		"raw", "0x0c", "0x21", env.Channel, "0x08", "0x6f", "0x02")
	require.Error(t, err)
	assert.Contains(t, out, "rsp=0x82")
}

func TestSOL_SetInProgressLock(t *testing.T) {
	env := loadTestEnv()

	out, err := runIPMITool(env.IPMIHost, env.User, env.Pass,
		"raw", "0x0c", "0x21", env.Channel, "0x00", "0x01")
	require.NoError(t, err, "ipmitool output: %s", out)

	out, err = runIPMITool(env.IPMIHost, env.User, env.Pass,
		"raw", "0x0c", "0x21", env.Channel, "0x00", "0x01")
	require.Error(t, err)
	assert.Contains(t, out, "rsp=0x81")

	out, err = runIPMITool(env.IPMIHost, env.User, env.Pass,
		"raw", "0x0c", "0x21", env.Channel, "0x00", "0x00")
	require.NoError(t, err, "ipmitool output: %s", out)
}
