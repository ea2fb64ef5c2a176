// Copyright 2024 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package boxcli

import (
	"maps"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"go.filebox.dev/filebox/internal/ecosystem/envfile"
	"go.filebox.dev/filebox/internal/envir"
)

// to be composed into xyzCmdFlags structs
type envFlag struct {
	EnvMap  map[string]string
	EnvFile string
}

func (f *envFlag) register(cmd *cobra.Command) {
	cmd.Flags().StringToStringVarP(
		&f.EnvMap, "env", "e", nil, "environment variables to add to the launching environment",
	)
	cmd.Flags().StringVar(
		&f.EnvFile, "env-file", "", "path to a file containing environment variables to add to the launching environment",
	)
}

// Parent returns the launching environment: this process's environment with
// the flag values on top. Apps resolve their env indirections against it.
func (f *envFlag) Parent() (map[string]string, error) {
	envs := envir.PairsToMap(os.Environ())
	if f.EnvFile != "" {
		envPath, err := filepath.Abs(f.EnvFile)
		if err != nil {
			return nil, err
		}
		fromFile, err := envfile.Read(envPath)
		if err != nil {
			return nil, err
		}
		maps.Copy(envs, fromFile)
	}
	maps.Copy(envs, f.EnvMap)
	return envs, nil
}
