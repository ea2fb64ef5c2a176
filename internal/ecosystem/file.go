// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package ecosystem loads process-manager ecosystem files: lists of named
// process descriptors with their launch command and environment.
package ecosystem

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.filebox.dev/filebox/internal/cuecfg"
)

const DefaultName = "ecosystem.json"

// candidateNames are checked in order by Find.
var candidateNames = []string{
	DefaultName,
	"ecosystem.jsonc",
	"ecosystem.yaml",
	"ecosystem.yml",
	"ecosystem.toml",
}

// File is a parsed ecosystem file.
type File struct {
	// AbsRootPath is the absolute path of the file the apps were loaded
	// from. It is empty for files loaded from memory.
	AbsRootPath string `json:"-" yaml:"-" toml:"-"`

	Apps []App `json:"apps" yaml:"apps" toml:"apps"`
}

// Load reads and validates the ecosystem file at path. The format is picked
// from the extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	f, err := LoadBytes(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	f.AbsRootPath = abs
	return f, nil
}

func LoadBytes(data []byte, ext string) (*File, error) {
	if !cuecfg.IsSupportedExtension(ext) {
		return nil, errors.Errorf("unsupported ecosystem file format %q", ext)
	}
	f := &File{}
	if err := cuecfg.Unmarshal(data, ext, f); err != nil {
		return nil, err
	}
	return f, f.Validate()
}

// Find returns the ecosystem file to use. path may name a file or a
// directory; relative paths are taken from dir. When path is empty the
// candidate names are looked up in dir. Find returns "" when nothing exists.
func Find(dir, path string) string {
	if path == "" {
		path = dir
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	pathsToCheck := []string{path}
	for _, name := range candidateNames {
		pathsToCheck = append(pathsToCheck, filepath.Join(path, name))
	}
	for _, p := range pathsToCheck {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// Save writes f to path in the format named by its extension.
func (f *File) Save(path string) error {
	return cuecfg.WriteFile(path, f)
}

// RootDir is the directory relative paths in the file are resolved against.
func (f *File) RootDir() string {
	if f.AbsRootPath == "" {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Dir(f.AbsRootPath)
}

// App returns the app with the given name.
func (f *File) App(name string) (*App, bool) {
	for i := range f.Apps {
		if f.Apps[i].Name == name {
			return &f.Apps[i], true
		}
	}
	return nil, false
}

// Names returns app names in declaration order.
func (f *File) Names() []string {
	return lo.Map(f.Apps, func(a App, _ int) string { return a.Name })
}

// Match returns the apps whose name matches any of the glob patterns, in
// declaration order. No patterns matches every app.
func (f *File) Match(patterns ...string) ([]App, error) {
	if len(patterns) == 0 {
		return f.Apps, nil
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid app name pattern %q", p)
		}
	}
	return lo.Filter(f.Apps, func(a App, _ int) bool {
		return lo.ContainsBy(patterns, func(p string) bool {
			ok, _ := doublestar.Match(p, a.Name)
			return ok
		})
	}), nil
}

func (f *File) Validate() error {
	fns := []func(f *File) error{
		validateNames,
		validateScripts,
	}

	for _, fn := range fns {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func validateNames(f *File) error {
	var empty []string
	for i, app := range f.Apps {
		if strings.TrimSpace(app.Name) == "" {
			empty = append(empty, "#"+strconv.Itoa(i))
		}
	}
	if len(empty) > 0 {
		return errors.Errorf("ecosystem apps with empty name: %s", strings.Join(empty, ", "))
	}
	if dups := lo.FindDuplicates(f.Names()); len(dups) > 0 {
		return errors.Errorf("duplicate ecosystem app names: %s", strings.Join(dups, ", "))
	}
	return nil
}

func validateScripts(f *File) error {
	var missing []string
	for _, app := range f.Apps {
		if strings.TrimSpace(app.Script) == "" {
			missing = append(missing, app.Name)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("ecosystem apps without a script: %s", strings.Join(missing, ", "))
	}
	return nil
}
