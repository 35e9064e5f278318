package goksql

import (
	"context"
	"os"
	"path/filepath"
)

type localStorageClient struct {
}

func (util *localStorageClient) upload(_ context.Context, loc *exportLocation, data []byte, _ string) error {
	target := expandUser(loc.key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o600)
}

func expandUser(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
