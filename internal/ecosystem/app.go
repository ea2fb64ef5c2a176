// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package ecosystem

import (
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
)

// InterpreterNone is the interpreter sentinel that launches the script
// directly, without a wrapper runtime.
const InterpreterNone = "none"

// App describes how to launch one managed process.
type App struct {
	// Name identifies the app. It is unique within a File.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Script is the executable name or path.
	Script string `json:"script" yaml:"script" toml:"script"`

	// Args is the verbatim command-line argument string passed to Script.
	Args string `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`

	// Interpreter runs Script when set. Empty or "none" execs Script directly.
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty" toml:"interpreter,omitempty"`

	// Cwd is the working directory, relative to the ecosystem file.
	Cwd string `json:"cwd,omitempty" yaml:"cwd,omitempty" toml:"cwd,omitempty"`

	// EnvFile is a dotenv file, relative to the ecosystem file.
	EnvFile string `json:"env_file,omitempty" yaml:"env_file,omitempty" toml:"env_file,omitempty"`

	// Env holds inline variables. Values may reference variables of the
	// launching environment with $VAR or ${VAR}.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
}

func (a *App) IsDirect() bool {
	return a.Interpreter == "" || a.Interpreter == InterpreterNone
}

// SplitArgs splits Args using POSIX shell quoting rules.
func (a *App) SplitArgs() ([]string, error) {
	if strings.TrimSpace(a.Args) == "" {
		return nil, nil
	}
	args, err := shellquote.Split(a.Args)
	if err != nil {
		return nil, errors.Wrapf(err, "app %q: invalid args %q", a.Name, a.Args)
	}
	return args, nil
}

// Argv returns the full command line of the app, interpreter first if there
// is one.
func (a *App) Argv() ([]string, error) {
	args, err := a.SplitArgs()
	if err != nil {
		return nil, err
	}
	argv := []string{a.Script}
	if !a.IsDirect() {
		argv = []string{a.Interpreter, a.Script}
	}
	return append(argv, args...), nil
}

// Dir returns the working directory of the app given the directory holding
// the ecosystem file.
func (a *App) Dir(root string) string {
	return resolvePath(root, a.Cwd)
}

// EnvFilePath returns the absolute env file path, or "" when the app has
// none.
func (a *App) EnvFilePath(root string) string {
	if a.EnvFile == "" {
		return ""
	}
	return resolvePath(root, a.EnvFile)
}

func resolvePath(root, path string) string {
	if path == "" {
		return root
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
