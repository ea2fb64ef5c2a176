// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package envfile computes the environment an ecosystem app is launched
// with.
package envfile

import (
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"go.filebox.dev/filebox/internal/debug"
	"go.filebox.dev/filebox/internal/ecosystem"
	"go.filebox.dev/filebox/internal/envir"
)

// Read parses the dotenv file at path.
func Read(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return env, nil
}

// Environment is the resolved environment of one app.
type Environment struct {
	// Vars is the full environment: parent, then env file, then inline env.
	Vars map[string]string

	// Own is the part of Vars set by the app itself: the env file and the
	// inline env, without what it inherits from the parent.
	Own map[string]string

	// unresolved holds the variables referenced by inline values that were
	// empty or undefined.
	unresolved []string
}

// Resolve computes the environment of app. root is the directory holding the
// ecosystem file and parent is the launching process's environment.
//
// Inline values are expanded against parent overlaid with the env file, so
// an inline value may derive from either. $PWD expands to the app's working
// directory and $$ is a literal $.
func Resolve(app *ecosystem.App, root string, parent map[string]string) (*Environment, error) {
	fromFile := map[string]string{}
	if path := app.EnvFilePath(root); path != "" {
		var err error
		fromFile, err = Read(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Errorf("app %q: env file %s does not exist", app.Name, path)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "app %q: read env file", app.Name)
		}
		debug.Log("app %s: read %d variables from %s", app.Name, len(fromFile), path)
	}

	lookup := maps.Clone(parent)
	if lookup == nil {
		lookup = map[string]string{}
	}
	maps.Copy(lookup, fromFile)

	env := &Environment{Vars: maps.Clone(lookup), Own: maps.Clone(fromFile)}
	missing := map[string]bool{}
	dir := app.Dir(root)
	for k, v := range app.Env {
		expanded := expand(v, func(name string) string {
			if name == envir.PWD {
				return dir
			}
			val := lookup[name]
			if val == "" {
				missing[name] = true
			}
			return val
		})
		env.Vars[k] = expanded
		env.Own[k] = expanded
	}
	env.unresolved = slices.Sorted(maps.Keys(missing))
	return env, nil
}

// reference matches $$, ${NAME} and $NAME where NAME is an identifier.
var reference = regexp.MustCompile(`\$\$|\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expand replaces ${NAME} and $NAME in s with mapping(NAME). $$ is a literal
// $, and a $ that does not start a reference is kept as is.
func expand(s string, mapping func(name string) string) string {
	return reference.ReplaceAllStringFunc(s, func(m string) string {
		if m == "$$" {
			return "$"
		}
		name := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(m, "$"), "{"), "}")
		return mapping(name)
	})
}

// Unresolved returns the sorted names of variables that inline values
// referenced but that had no value.
func (e *Environment) Unresolved() []string {
	return e.unresolved
}

// Environ returns the environment as sorted KEY=value pairs.
func (e *Environment) Environ() []string {
	return envir.MapToPairs(e.Vars)
}
