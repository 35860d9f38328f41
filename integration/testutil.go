//go:build integration

package integration

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"
)

type testEnv struct {
	IPMIHost string
	Channel  string
	User     string
	Pass     string
}

func loadTestEnv() testEnv {
	return testEnv{
		IPMIHost: getEnvDefault("BMC_IPMI_HOST", "localhost"),
		Channel:  getEnvDefault("BMC_IPMI_CHANNEL", "1"),
		User:     getEnvDefault("BMC_USER", "admin"),
		Pass:     getEnvDefault("BMC_PASS", "password"),
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// runIPMITool executes ipmitool with RMCP+ (lanplus) interface and cipher suite 3
func runIPMITool(host, user, pass string, args ...string) (string, error) {
	cmdArgs := []string{"-I", "lanplus", "-C", "3", "-H", host, "-U", user, "-P", pass}
	cmdArgs = append(cmdArgs, args...)
	cmd := exec.Command("ipmitool", cmdArgs...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// printField extracts the value of a "Name : value" line from
// ipmitool lan print / sol info output.
func printField(out, name string) string {
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == name {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func waitForDaemonReady(env testEnv, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("udp", env.IPMIHost+":623", 2*time.Second)
		if err == nil {
			conn.Close()
			if _, err := runIPMITool(env.IPMIHost, env.User, env.Pass, "mc", "info"); err == nil {
				return nil
			}
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("daemon not ready within %s", timeout)
}
