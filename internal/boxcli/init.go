// Copyright 2023 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package boxcli

import (
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.filebox.dev/filebox/internal/cuecfg"
	"go.filebox.dev/filebox/internal/ecosystem"
	"go.filebox.dev/filebox/internal/ux"
)

type initCmdFlags struct {
	name string
}

func initCmd() *cobra.Command {
	flags := &initCmdFlags{}
	command := &cobra.Command{
		Use:   "init [<dir>]",
		Short: "Initialize a directory with an ecosystem file",
		Long: heredoc.Doc(`
			Initialize a directory with an ecosystem file.

			This will create an ecosystem.json declaring a MinIO server and the
			filebox UI server in front of it. Both read their credentials from .env.
			`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitCmd(cmd, args, flags)
		},
	}

	command.Flags().StringVar(
		&flags.name, "name", ecosystem.DefaultName,
		"file name to create; the extension picks the format (.json, .yaml, .toml)")

	return command
}

func runInitCmd(cmd *cobra.Command, args []string, flags *initCmdFlags) error {
	dir := pathArg(args)
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return errors.WithStack(err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithStack(err)
	}

	path := filepath.Join(dir, flags.name)
	created, err := cuecfg.InitFile(path, ecosystem.Default())
	if err != nil {
		return err
	}
	if !created {
		ux.Finfo(cmd.ErrOrStderr(), "%s already exists, leaving it unchanged.\n", path)
		return nil
	}
	ux.Fsuccess(cmd.ErrOrStderr(), "Created %s\n", path)
	return nil
}
