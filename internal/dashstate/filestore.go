package dashstate

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ericogr/gamedash/internal/dashclient"
)

// Persisted is the part of a session kept between CLI invocations.
type Persisted struct {
	Server string `yaml:"server,omitempty"`
	Game   string `yaml:"game,omitempty"`
	Tab    Tab    `yaml:"tab,omitempty"`
}

// FileStore keeps Persisted in a YAML file.
type FileStore struct {
	Path string
}

// DefaultPath is gamedash/state.yaml under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "gamedash", "state.yaml")
}

// Load reads the state file. A missing file yields the zero value.
func (f FileStore) Load() (Persisted, error) {
	var p Persisted
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, errors.Wrapf(err, "read %s", f.Path)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, errors.Wrapf(err, "parse %s", f.Path)
	}
	if p.Tab != "" {
		if p.Tab, err = ParseTab(string(p.Tab)); err != nil {
			return Persisted{}, errors.Wrapf(err, "parse %s", f.Path)
		}
	}
	return p, nil
}

func (f FileStore) Save(p Persisted) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(f.Path))
	}
	return errors.Wrapf(os.WriteFile(f.Path, data, 0o600), "write %s", f.Path)
}

// Persisted returns the selection to save.
func (s *Session) Persisted() Persisted {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Persisted{Tab: s.st.CurrentTab}
	if s.st.CurrentGame != nil {
		p.Game = s.st.CurrentGame.Slug
	}
	return p
}

// Restore reapplies a saved selection and loads the saved tab. A saved
// game that no longer exists leaves the session without a game.
func (s *Session) Restore(ctx context.Context, p Persisted) error {
	if p.Tab != "" {
		s.UpdateCurrentTab(p.Tab)
	}
	if p.Game == "" {
		return s.Refresh(ctx)
	}
	err := s.SelectGame(ctx, p.Game)
	var apiErr *dashclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		s.Reset()
		return s.Refresh(ctx)
	}
	return err
}
