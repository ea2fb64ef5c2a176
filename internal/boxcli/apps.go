// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package boxcli

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.filebox.dev/filebox/internal/boxcli/usererr"
	"go.filebox.dev/filebox/internal/ecosystem"
	"go.filebox.dev/filebox/internal/ecosystem/envfile"
	"go.filebox.dev/filebox/internal/launch"
	"go.filebox.dev/filebox/internal/services"
	"go.filebox.dev/filebox/internal/ux"
)

type appsCmdFlags struct {
	config configFlags
}

func appsCmd() *cobra.Command {
	flags := &appsCmdFlags{}
	command := &cobra.Command{
		Use:   "apps",
		Short: "Inspect and launch the apps declared in the ecosystem file",
	}

	flags.config.register(command)
	command.AddCommand(appsListCmd(flags))
	command.AddCommand(appsCheckCmd(flags))
	command.AddCommand(appsEnvCmd(flags))
	command.AddCommand(appsRunCmd(flags))
	command.AddCommand(appsExportCmd(flags))
	return command
}

func appsListCmd(flags *appsCmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [<pattern>...]",
		Aliases: []string{"list"},
		Short:   "List the declared apps, optionally only those matching glob patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.config.load()
			if err != nil {
				return err
			}
			apps, err := f.Match(args...)
			if err != nil {
				return usererr.WithUserMessage(err, "Invalid pattern.")
			}
			return printApps(cmd, apps)
		},
	}
}

func printApps(cmd *cobra.Command, apps []ecosystem.App) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Name", "Script", "Args", "Interpreter", "Env File")
	for _, app := range apps {
		interpreter := app.Interpreter
		if app.IsDirect() {
			interpreter = ecosystem.InterpreterNone
		}
		if err := table.Append([]string{
			app.Name, app.Script, app.Args, interpreter, app.EnvFile,
		}); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(table.Render())
}

type appsEnvCmdFlags struct {
	env envFlag
	all bool
}

func appsEnvCmd(flags *appsCmdFlags) *cobra.Command {
	envFlags := &appsEnvCmdFlags{}
	command := &cobra.Command{
		Use:   "env <app>",
		Short: "Print the environment an app is launched with",
		Long: heredoc.Doc(`
			Print the environment an app is launched with, as shell-quoted KEY=value lines.

			By default only the variables the app sets itself (env file and inline env)
			are printed. Use --all to include the inherited environment.
			`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppsEnvCmd(cmd, args[0], flags, envFlags)
		},
	}
	envFlags.env.register(command)
	command.Flags().BoolVar(&envFlags.all, "all", false, "include inherited variables")
	return command
}

func runAppsEnvCmd(cmd *cobra.Command, name string, flags *appsCmdFlags, envFlags *appsEnvCmdFlags) error {
	f, app, err := flags.config.app(name)
	if err != nil {
		return err
	}
	parent, err := envFlags.env.Parent()
	if err != nil {
		return err
	}
	env, err := envfile.Resolve(app, f.RootDir(), parent)
	if err != nil {
		return err
	}
	if missing := env.Unresolved(); len(missing) > 0 {
		ux.Fwarning(cmd.ErrOrStderr(), "app %q references unset variables: %s\n",
			name, strings.Join(missing, ", "))
	}

	vars := env.Own
	if envFlags.all {
		vars = env.Vars
	}
	w := cmd.OutOrStdout()
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		fmt.Fprintf(w, "%s=%s\n", k, shellescape.Quote(vars[k]))
	}
	return nil
}

type appsRunCmdFlags struct {
	env envFlag
}

func appsRunCmd(flags *appsCmdFlags) *cobra.Command {
	runFlags := &appsRunCmdFlags{}
	command := &cobra.Command{
		Use:   "run <app>",
		Short: "Run one app in the foreground",
		Long: heredoc.Doc(`
			Run one app in the foreground with its resolved environment, exiting with
			the app's exit code. The app is not restarted; use 'filebox services up'
			for that.
			`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppsRunCmd(cmd, args[0], flags, runFlags)
		},
	}
	runFlags.env.register(command)
	return command
}

func runAppsRunCmd(cmd *cobra.Command, name string, flags *appsCmdFlags, runFlags *appsRunCmdFlags) error {
	f, app, err := flags.config.app(name)
	if err != nil {
		return err
	}
	parent, err := runFlags.env.Parent()
	if err != nil {
		return err
	}
	c, err := launch.Command(cmd.Context(), f, app, parent)
	if err != nil {
		return err
	}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		ux.Finfo(cmd.ErrOrStderr(), "Running %s: %s\n", app.Name, c.String())
	}
	return launch.Run(c, launch.Stdio{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	})
}

type appsExportCmdFlags struct {
	env    envFlag
	output string
}

func appsExportCmd(flags *appsCmdFlags) *cobra.Command {
	exportFlags := &appsExportCmdFlags{}
	command := &cobra.Command{
		Use:   "export",
		Short: "Write a process-compose.yaml for the declared apps",
		Long: "Write a process-compose.yaml that launches every declared app with its resolved " +
			"environment, restarting it when it fails. The file may contain credentials read " +
			"from env files.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppsExportCmd(cmd, flags, exportFlags)
		},
	}
	exportFlags.env.register(command)
	command.Flags().StringVarP(&exportFlags.output, "output", "o", "",
		"path to write to (default: process-compose.yaml next to the ecosystem file)")
	return command
}

func runAppsExportCmd(cmd *cobra.Command, flags *appsCmdFlags, exportFlags *appsExportCmdFlags) error {
	f, err := flags.config.load()
	if err != nil {
		return err
	}
	parent, err := exportFlags.env.Parent()
	if err != nil {
		return err
	}
	pc, err := services.FromEcosystem(f, parent)
	if err != nil {
		return err
	}

	out := exportFlags.output
	if out == "" {
		out = filepath.Join(f.RootDir(), services.ProcessComposeFileName)
	}
	if err := services.WriteProcessCompose(out, pc); err != nil {
		return err
	}
	ux.Fsuccess(cmd.ErrOrStderr(), "Wrote %s\n", out)
	return nil
}
