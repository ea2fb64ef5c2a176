// Copyright 2022 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package boxcli

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.filebox.dev/filebox/internal/cuecfg"
	"go.filebox.dev/filebox/internal/debug"
	"go.filebox.dev/filebox/internal/fileutil"
	"go.filebox.dev/filebox/internal/services"
)

type servicesCmdFlags struct {
	config configFlags
	env    envFlag
	port   int
	bin    string
}

func servicesCmd() *cobra.Command {
	flags := &servicesCmdFlags{}
	servicesCommand := &cobra.Command{
		Use:   "services",
		Short: "Run the declared apps under process-compose",
	}

	upCommand := &cobra.Command{
		Use:   "up",
		Short: "Start every app under process-compose, restarting apps that fail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return servicesUp(cmd, flags)
		},
	}

	flags.config.register(servicesCommand)
	flags.env.register(upCommand)
	upCommand.Flags().IntVar(&flags.port, "pcport", 0, "port for the process-compose API (default: a free port)")
	upCommand.Flags().StringVar(&flags.bin, "process-compose", "", "path to the process-compose binary")
	servicesCommand.AddCommand(upCommand)
	return servicesCommand
}

func servicesUp(cmd *cobra.Command, flags *servicesCmdFlags) error {
	f, err := flags.config.load()
	if err != nil {
		return err
	}
	parent, err := flags.env.Parent()
	if err != nil {
		return err
	}
	pc, err := services.FromEcosystem(f, parent)
	if err != nil {
		return err
	}

	path, err := exportPath(f.AbsRootPath)
	if err != nil {
		return err
	}
	if err := services.WriteProcessCompose(path, pc); err != nil {
		return err
	}

	files := []string{path}
	if override := services.LookupProcessComposeOverride(f.RootDir()); override != "" {
		debug.Log("using process-compose override %s", override)
		files = append(files, override)
	}
	return services.StartProcessManager(cmd.Context(), services.ManagerOpts{
		Bin:    flags.bin,
		Files:  files,
		Port:   flags.port,
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
}

// exportPath is where services up writes the generated process-compose file
// for the ecosystem file at ecosystemPath, one file per ecosystem file in the
// state directory.
func exportPath(ecosystemPath string) (string, error) {
	hash, err := cuecfg.Hash(ecosystemPath)
	if err != nil {
		return "", errors.WithStack(err)
	}
	dir, err := fileutil.EnsureDir(fileutil.ProcessComposeDir)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return filepath.Join(dir, hash[:16]+".yaml"), nil
}
