// Package file provides a file-based launch ledger. Each launch is one JSON
// file named after the hash of its handle.
package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/persistence"
)

const launchesDir = "launches"

// Persistence implements persistence.Persistence using the file system.
type Persistence struct {
	root string
}

// NewPersistence accepts a directory or a file:// url.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

func (fp *Persistence) dir() string {
	return filepath.Join(fp.root, launchesDir)
}

// path never contains the handle itself, so handles cannot traverse paths.
func (fp *Persistence) path(handle models.ExecutionHandle) string {
	sum := sha256.Sum256([]byte(handle))

	return filepath.Join(fp.dir(), hex.EncodeToString(sum[:])+".json")
}

func (fp *Persistence) SaveLaunch(_ context.Context, launch *models.Launch) error {
	if launch.Handle == "" {
		return persistence.NewLaunchError("SaveLaunch", "", persistence.ErrInvalidHandle)
	}

	err := os.MkdirAll(fp.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create launches directory: %w", err)
	}

	data, err := json.Marshal(launch)
	if err != nil {
		return fmt.Errorf("failed to marshal launch %s: %w", launch.Handle, err)
	}

	// Write then rename so readers never see a partial record.
	tmp, err := os.CreateTemp(fp.dir(), "launch-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write launch %s: %w", launch.Handle, err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to write launch %s: %w", launch.Handle, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write launch %s: %w", launch.Handle, err)
	}

	if err = os.Rename(tmp.Name(), fp.path(launch.Handle)); err != nil {
		return fmt.Errorf("failed to write launch %s: %w", launch.Handle, err)
	}

	return nil
}

func (fp *Persistence) LaunchByHandle(_ context.Context, handle models.ExecutionHandle) (*models.Launch, error) {
	data, err := os.ReadFile(fp.path(handle))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewLaunchError("LaunchByHandle", handle.String(), persistence.ErrLaunchNotFound)
		}

		return nil, persistence.NewLaunchError("LaunchByHandle", handle.String(), err)
	}

	var launch models.Launch

	err = json.Unmarshal(data, &launch)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal launch %s: %w", handle, err)
	}

	return &launch, nil
}

func (fp *Persistence) PruneLaunches(ctx context.Context, before time.Time) (int64, error) {
	entries, err := os.ReadDir(fp.dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to list launches: %w", err)
	}

	var deleted int64

	for _, entry := range entries {
		if ctx.Err() != nil {
			return deleted, ctx.Err()
		}

		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(fp.dir(), entry.Name())

		data, err := os.ReadFile(path) // #nosec G304 -- path is built from a directory listing
		if err != nil {
			continue
		}

		var launch models.Launch
		if json.Unmarshal(data, &launch) != nil || !launch.LaunchedAt.Before(before) {
			continue
		}

		if err := os.Remove(path); err == nil {
			deleted++
		}
	}

	return deleted, nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
