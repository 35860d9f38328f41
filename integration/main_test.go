//go:build integration

package integration

import (
	"log"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	env := loadTestEnv()
	log.Println("Waiting for daemon to be ready...")
	if err := waitForDaemonReady(env, 30*time.Second); err != nil {
		log.Fatalf("daemon failed to become ready: %v", err)
	}
	log.Println("Daemon is ready, running tests...")
	os.Exit(m.Run())
}
