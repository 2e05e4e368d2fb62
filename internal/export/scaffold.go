package export

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ProjectFile names the project manifest every template must carry.
const ProjectFile = "default.project.json"

var ErrBadTemplate = errors.New("invalid game template")

// Scaffold copies the template project into the directory of slug unless
// that directory already exists, and names the project after the slug.
// It reports whether a copy was made. Without a template it does nothing.
func (e *Exporter) Scaffold(slug string) (bool, error) {
	if e.Template == "" || strings.TrimSpace(slug) == "" {
		return false, nil
	}
	if _, err := os.Stat(filepath.Join(e.Template, ProjectFile)); err != nil {
		return false, errors.Wrapf(ErrBadTemplate, "%s has no %s", e.Template, ProjectFile)
	}

	e.fsMu.Lock()
	defer e.fsMu.Unlock()
	dst := e.GameDir(slug)
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "stat %s", dst)
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return false, errors.Wrapf(err, "create %s", e.dir)
	}
	// build next to the target so a failed copy never leaves a half project
	tmp, err := os.MkdirTemp(e.dir, ".scaffold-*")
	if err != nil {
		return false, errors.Wrap(err, "create scaffold dir")
	}
	defer os.RemoveAll(tmp)

	if err := copyTree(e.Template, tmp); err != nil {
		return false, err
	}
	if err := nameProject(filepath.Join(tmp, ProjectFile), slug); err != nil {
		return false, err
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		return false, errors.Wrapf(err, "chmod %s", dst)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return false, errors.Wrapf(err, "move scaffold into %s", dst)
	}
	return true, nil
}

// hidden entries (dot files, __pycache__ and the like) are not copied
func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "__")
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "read template %s", path)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return errors.Wrapf(os.MkdirAll(target, 0o755), "create %s", target)
		case d.Type().IsRegular():
			return copyFile(path, target)
		}
		return nil
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "copy %s", src)
	}
	return errors.Wrapf(out.Close(), "close %s", dst)
}

func nameProject(path, slug string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	var project map[string]interface{}
	if err := json.Unmarshal(raw, &project); err != nil || project == nil {
		return errors.Wrapf(ErrBadTemplate, "%s is not a JSON object", ProjectFile)
	}
	project["name"] = slug
	out, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, append(out, '\n'), 0o644), "write %s", path)
}
