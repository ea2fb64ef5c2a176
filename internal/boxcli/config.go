// Copyright 2023 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package boxcli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.filebox.dev/filebox/internal/boxcli/usererr"
	"go.filebox.dev/filebox/internal/debug"
	"go.filebox.dev/filebox/internal/ecosystem"
	"go.filebox.dev/filebox/internal/envir"
)

// to be composed into xyzCmdFlags structs
type configFlags struct {
	path string
}

func (flags *configFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(
		&flags.path, "config", "c", "",
		"path to an ecosystem file, or a directory containing one",
	)
}

// find returns the path of the ecosystem file the flags point at.
func (flags *configFlags) find() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.WithStack(err)
	}
	path := flags.path
	if path == "" {
		path = os.Getenv(envir.FileboxConfig)
	}
	found := ecosystem.Find(wd, path)
	if found == "" {
		if path == "" {
			path = wd
		}
		return "", usererr.New(
			"No ecosystem file found at %s. Run `filebox init` to create one.", path)
	}
	debug.Log("using ecosystem file %s", found)
	return found, nil
}

func (flags *configFlags) load() (*ecosystem.File, error) {
	path, err := flags.find()
	if err != nil {
		return nil, err
	}
	f, err := ecosystem.Load(path)
	if err != nil {
		return nil, usererr.WithUserMessage(err, "The ecosystem file %s is invalid.", path)
	}
	return f, nil
}

func (flags *configFlags) app(name string) (*ecosystem.File, *ecosystem.App, error) {
	f, err := flags.load()
	if err != nil {
		return nil, nil, err
	}
	app, ok := f.App(name)
	if !ok {
		return nil, nil, usererr.New("No app named %q. Available apps: %v", name, f.Names())
	}
	return f, app, nil
}
