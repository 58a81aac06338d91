package launcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/codedock/internal/errors"
)

// Resolver finds executables by scanning a search-path list.
type Resolver struct {
	fs      afero.Fs
	pathEnv string
}

// NewResolver returns a Resolver that probes fs using the directories in
// pathEnv, separated by the OS list separator.
func NewResolver(fs afero.Fs, pathEnv string) *Resolver {
	return &Resolver{fs: fs, pathEnv: pathEnv}
}

// Dirs returns the non-empty search-path entries in order.
func (r *Resolver) Dirs() []string {
	var dirs []string
	for _, dir := range filepath.SplitList(r.pathEnv) {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// Resolve returns the path of the first regular file matching spec. For
// every directory, in order, each extension is probed in order; the first
// hit stops the scan. Entries that cannot be read are skipped.
func (r *Resolver) Resolve(spec Spec) (string, error) {
	if spec.Executable == "" {
		return "", errors.NewLaunchError("no executable configured", errors.ErrExecutableNotFound)
	}

	if strings.ContainsRune(spec.Executable, os.PathSeparator) || strings.ContainsRune(spec.Executable, '/') {
		if path, ok := r.probe(filepath.Dir(spec.Executable), filepath.Base(spec.Executable), spec.extensions()); ok {
			return path, nil
		}
		return "", errors.NewLaunchError("executable does not exist", errors.ErrExecutableNotFound).
			WithExecutable(spec.Executable)
	}

	for _, dir := range r.Dirs() {
		if path, ok := r.probe(dir, spec.Executable, spec.extensions()); ok {
			return path, nil
		}
	}

	return "", errors.NewLaunchError("executable not found on search path", errors.ErrExecutableNotFound).
		WithExecutable(spec.Executable)
}

func (r *Resolver) probe(dir, name string, exts []string) (string, bool) {
	for _, ext := range exts {
		candidate := filepath.Join(dir, name+ext)
		info, err := r.fs.Stat(candidate)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}
