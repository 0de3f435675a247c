// Package project writes a generated Move package to disk.
//
// Layout:
//
//	<dir>/Move.toml
//	<dir>/sources/<slug>.move
//	<dir>/tests/<slug>.move
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrExists is returned when a target file exists and overwriting was not
// requested.
var ErrExists = errors.New("file already exists")

// Package is the rendered content of a coin package.
type Package struct {
	Slug     string
	MoveToml string
	Source   string
	Tests    string
}

// Layout holds the paths of a written package.
type Layout struct {
	Dir      string
	Manifest string
	Source   string
	Tests    string
}

// Paths returns where a package with the given slug lives under dir.
func Paths(dir, slug string) Layout {
	return Layout{
		Dir:      dir,
		Manifest: filepath.Join(dir, "Move.toml"),
		Source:   filepath.Join(dir, "sources", slug+".move"),
		Tests:    filepath.Join(dir, "tests", slug+".move"),
	}
}

// Write stores pkg under dir. Without force, nothing is written when any of
// the target files already exists.
func Write(dir string, pkg Package, force bool) (Layout, error) {
	if pkg.Slug == "" {
		return Layout{}, errors.New("package slug is empty")
	}
	l := Paths(dir, pkg.Slug)
	files := []struct {
		path    string
		content string
	}{
		{l.Manifest, pkg.MoveToml},
		{l.Source, pkg.Source},
		{l.Tests, pkg.Tests},
	}

	if !force {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return l, fmt.Errorf("%s: %w (use --force to overwrite)", f.path, ErrExists)
			} else if !errors.Is(err, os.ErrNotExist) {
				return l, fmt.Errorf("stat %s: %w", f.path, err)
			}
		}
	}

	for _, f := range files {
		if err := writeFile(f.path, f.content); err != nil {
			return l, err
		}
	}
	return l, nil
}

// writeFile writes through a temp file in the same directory so a reader
// never sees a partial module.
func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
