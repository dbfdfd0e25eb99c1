package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMain(m *testing.M) {
	tempHome, err := os.MkdirTemp("", "wsprofile-cmd-test-")
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = os.RemoveAll(tempHome)
	}()

	setEnvOrPanic := func(key, value string) {
		if err := os.Setenv(key, value); err != nil {
			panic(err)
		}
	}

	setEnvOrPanic("HOME", tempHome)
	setEnvOrPanic("XDG_CONFIG_HOME", "")
	setEnvOrPanic("WSPROFILE_STATE_PATH", filepath.Join(tempHome, "state.json"))
	setEnvOrPanic("WSPROFILE_BACKUP_LOCATION", filepath.Join(tempHome, "backups"))

	os.Exit(m.Run())
}
