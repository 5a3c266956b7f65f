package preconditions

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
	"github.com/fusion-energy/cad-to-h5m/internal/importer"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
)

// Check verifies all preconditions for starting the engine are met
func Check(cfg engine.Config) error {
	checks := []struct {
		name string
		fn   func(engine.Config) error
	}{
		{"Engine path", checkEnginePath},
		{"Engine bridge", checkBridge},
	}

	for _, check := range checks {
		if err := check.fn(cfg); err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
	}

	return nil
}

func checkEnginePath(cfg engine.Config) error {
	if cfg.Path == "" {
		return nil
	}
	info, err := os.Stat(cfg.Path)
	if err != nil || !info.IsDir() {
		return &engine.EngineUnavailableError{Path: cfg.Path, Err: fmt.Errorf("not a directory")}
	}
	return nil
}

func checkBridge(cfg engine.Config) error {
	executable := cfg.Executable()

	// A bare name is looked up in PATH like any other command
	if filepath.Base(executable) == executable {
		if _, err := exec.LookPath(executable); err != nil {
			return &engine.EngineUnavailableError{
				Path: cfg.Path,
				Err:  fmt.Errorf("%s not found in PATH, set engine.path to the Cubit installation", executable),
			}
		}
		return nil
	}

	info, err := os.Stat(executable)
	if err != nil {
		return &engine.EngineUnavailableError{Path: cfg.Path, Err: err}
	}
	if info.IsDir() || info.Mode()&0111 == 0 {
		return &engine.EngineUnavailableError{Path: cfg.Path, Err: fmt.Errorf("%s is not executable", executable)}
	}
	return nil
}

// ValidateInputs checks that every input file exists and has a supported format
func ValidateInputs(details models.GeometryDetails) error {
	for i, entry := range details {
		if _, err := importer.CheckEntry(entry); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return nil
}
