// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package launch turns ecosystem apps into runnable commands.
package launch

import (
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"go.filebox.dev/filebox/internal/boxcli/usererr"
	"go.filebox.dev/filebox/internal/debug"
	"go.filebox.dev/filebox/internal/ecosystem"
	"go.filebox.dev/filebox/internal/ecosystem/envfile"
	"go.filebox.dev/filebox/internal/fileutil"
)

// Stdio is where a launched app reads and writes.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Command builds the command that launches app. Every variable referenced by
// the app's inline env must resolve to a non-empty value.
func Command(
	ctx context.Context,
	f *ecosystem.File,
	app *ecosystem.App,
	parent map[string]string,
) (*exec.Cmd, error) {
	root := f.RootDir()
	env, err := envfile.Resolve(app, root, parent)
	if err != nil {
		return nil, err
	}
	if missing := env.Unresolved(); len(missing) > 0 {
		return nil, usererr.New(
			"app %q references unset variables: %s",
			app.Name, strings.Join(missing, ", "),
		)
	}

	argv, err := app.Argv()
	if err != nil {
		return nil, err
	}
	dir := app.Dir(root)
	argv[0] = resolveExecutable(argv[0], dir)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env.Environ()
	debug.Log("app %s: %s (dir %s)", app.Name, cmd.String(), dir)
	return cmd, nil
}

// Run starts cmd in the foreground and waits for it. A non-zero exit is
// returned as a usererr.ExitError so the CLI exits with the app's code.
func Run(cmd *exec.Cmd, stdio Stdio) error {
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	return usererr.NewExecError(cmd.Run())
}

// CheckExecutable reports whether the program that launches app exists:
// the interpreter for wrapped apps, the script otherwise.
func CheckExecutable(f *ecosystem.File, app *ecosystem.App) error {
	name := app.Script
	if !app.IsDirect() {
		name = app.Interpreter
	}
	dir := app.Dir(f.RootDir())
	if isPath(name) {
		if !fileutil.IsFile(resolveExecutable(name, dir)) {
			return errors.Errorf("app %q: %s not found in %s", app.Name, name, dir)
		}
		return nil
	}
	if _, err := exec.LookPath(name); err != nil {
		return errors.Wrapf(err, "app %q", app.Name)
	}
	return nil
}

// resolveExecutable makes relative paths like ./server absolute so they are
// found from the app's working directory. Bare names are left for PATH
// lookup.
func resolveExecutable(name, dir string) string {
	if !isPath(name) || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func isPath(name string) bool {
	return strings.ContainsRune(name, filepath.Separator)
}
