package bootstrap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

const stateVersion = 1

// State is the progress of a bootstrap, written after every completed step so
// that a failed run can be resumed.
type State struct {
	Version   int    `json:"version"`
	Config    Config `json:"config"`
	Completed Step   `json:"completedStep"`
	Linkage   `json:"linkage"`
}

func NewState(cfg Config) *State {
	return &State{Version: stateVersion, Config: cfg}
}

// Done reports whether every step has completed.
func (s *State) Done() bool {
	return s.Completed >= LastStep
}

// ReadState loads the state at path. A missing file yields a fresh state for cfg.
// A nil filesystem reads from the OS filesystem.
func ReadState(fsys afero.Fs, path string, cfg Config) (*State, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(cfg), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode state file %s: %w", path, err)
	}
	if st.Version != stateVersion {
		return nil, fmt.Errorf("unsupported state file version %d", st.Version)
	}
	if st.Completed < StepNone || st.Completed > LastStep {
		return nil, fmt.Errorf("state file has invalid completed step %d", int(st.Completed))
	}
	return &st, nil
}

// WriteState replaces the file at path with st.
func WriteState(fsys afero.Fs, path string, st *State) error {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer func() { _ = fsys.Remove(tmp.Name()) }()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := fsys.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
