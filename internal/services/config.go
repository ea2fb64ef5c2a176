// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package services hands ecosystem apps over to process-compose, the
// external process manager that starts, monitors and restarts them.
package services

import (
	"os"
	"path/filepath"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"

	"go.filebox.dev/filebox/internal/cuecfg"
	"go.filebox.dev/filebox/internal/debug"
	"go.filebox.dev/filebox/internal/ecosystem"
	"go.filebox.dev/filebox/internal/ecosystem/envfile"
	"go.filebox.dev/filebox/internal/envir"
)

const (
	ProcessComposeFileName = "process-compose.yaml"
	processComposeVersion  = "0.5"

	// RestartOnFailure restarts a process when it exits non-zero.
	RestartOnFailure = "on_failure"
)

type Process struct {
	Command     string   `yaml:"command"`
	WorkingDir  string   `yaml:"working_dir,omitempty"`
	Environment []string `yaml:"environment,omitempty"`
	Availability struct {
		Restart string `yaml:"restart,omitempty"`
	} `yaml:"availability,omitempty"`
}

type ProcessComposeYaml struct {
	Version   string             `yaml:"version"`
	Processes map[string]Process `yaml:"processes"`
}

// FromEcosystem converts every app of f into a process-compose process.
// Each process carries the variables its app sets itself; the rest is
// inherited from process-compose's own environment.
func FromEcosystem(f *ecosystem.File, parent map[string]string) (*ProcessComposeYaml, error) {
	defer debug.FunctionTimer().End()

	pc := &ProcessComposeYaml{
		Version:   processComposeVersion,
		Processes: make(map[string]Process, len(f.Apps)),
	}
	root := f.RootDir()
	for i := range f.Apps {
		app := &f.Apps[i]
		env, err := envfile.Resolve(app, root, parent)
		if err != nil {
			return nil, err
		}
		if missing := env.Unresolved(); len(missing) > 0 {
			return nil, errors.Errorf("app %q references unset variables: %v", app.Name, missing)
		}
		argv, err := app.Argv()
		if err != nil {
			return nil, err
		}

		p := Process{
			Command:     shellquote.Join(argv...),
			WorkingDir:  app.Dir(root),
			Environment: envir.MapToPairs(env.Own),
		}
		p.Availability.Restart = RestartOnFailure
		pc.Processes[app.Name] = p
	}
	return pc, nil
}

// WriteProcessCompose writes pc as YAML. The file may hold credentials from
// env files, so it is only readable by the owner.
func WriteProcessCompose(path string, pc *ProcessComposeYaml) error {
	data, err := cuecfg.Marshal(pc, ".yaml")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, data, 0o600))
}

func ReadProcessCompose(path string) (*ProcessComposeYaml, error) {
	pc := &ProcessComposeYaml{}
	if err := cuecfg.ParseFile(path, pc); err != nil {
		return nil, err
	}
	return pc, nil
}

// LookupProcessComposeOverride returns the process-compose override file in
// dir, or "" if there is none. process-compose merges it over the exported
// file.
func LookupProcessComposeOverride(dir string) string {
	for _, name := range []string{
		"process-compose.override.yaml",
		"process-compose.override.yml",
	} {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}
