// Package filestore keeps uploaded model files on local disk.
package filestore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrUnsupportedType = errors.New("unsupported model file type")
	ErrTooLarge        = errors.New("model file too large")
)

// MaxFileSize bounds a single upload.
const MaxFileSize = 50 << 20

var allowedExt = map[string]bool{".rbxm": true, ".rbxmx": true}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes files under <dir>/<asset type>/.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// SanitizeName reduces a client-supplied file name to a safe base name.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	return name
}

// Save copies r into the store and returns the path relative to the store
// root, using forward slashes.
func (s *Store) Save(assetType, name string, r io.Reader) (string, error) {
	clean := SanitizeName(name)
	if !allowedExt[strings.ToLower(filepath.Ext(clean))] {
		return "", ErrUnsupportedType
	}
	sub := SanitizeName(assetType)
	if sub == "" {
		sub = "Model"
	}
	dir := filepath.Join(s.dir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", pkgerrors.Wrapf(err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", pkgerrors.Wrap(err, "create upload file")
	}
	defer os.Remove(tmp.Name())
	n, err := io.Copy(tmp, io.LimitReader(r, MaxFileSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", pkgerrors.Wrapf(err, "write %s", clean)
	}
	if n > MaxFileSize {
		return "", ErrTooLarge
	}
	dst := filepath.Join(dir, clean)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", pkgerrors.Wrapf(err, "store %s", clean)
	}
	return sub + "/" + clean, nil
}

// Remove deletes a file previously returned by Save. Missing files are not
// an error.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	p, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(err, "remove %s", rel)
	}
	return nil
}

// Open returns a reader for a stored file.
func (s *Store) Open(rel string) (*os.File, error) {
	p, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *Store) resolve(rel string) (string, error) {
	p := filepath.Join(s.dir, filepath.FromSlash(rel))
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", pkgerrors.Errorf("path %q escapes store", rel)
	}
	return abs, nil
}
