// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package boxcli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.filebox.dev/filebox/internal/boxcli/usererr"
	"go.filebox.dev/filebox/internal/cuecfg"
	"go.filebox.dev/filebox/internal/ecosystem"
	"go.filebox.dev/filebox/internal/ecosystem/envfile"
	"go.filebox.dev/filebox/internal/launch"
	"go.filebox.dev/filebox/internal/services"
	"go.filebox.dev/filebox/internal/ux"
)

type appsCheckCmdFlags struct {
	env   envFlag
	watch bool
}

func appsCheckCmd(flags *appsCmdFlags) *cobra.Command {
	checkFlags := &appsCheckCmdFlags{}
	command := &cobra.Command{
		Use:   "check",
		Short: "Check that every app can be launched",
		Long: heredoc.Doc(`
			Check the ecosystem file: app names are present and unique, env files
			exist, and every variable an inline env references has a value.

			Missing executables are reported as warnings.
			`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppsCheckCmd(cmd, flags, checkFlags)
		},
	}
	checkFlags.env.register(command)
	command.Flags().BoolVarP(&checkFlags.watch, "watch", "w", false,
		"re-check whenever the ecosystem file changes")
	return command
}

func runAppsCheckCmd(cmd *cobra.Command, flags *appsCmdFlags, checkFlags *appsCheckCmdFlags) error {
	parent, err := checkFlags.env.Parent()
	if err != nil {
		return err
	}
	if !checkFlags.watch {
		f, err := flags.config.load()
		if err != nil {
			return err
		}
		return checkApps(cmd.Context(), cmd.OutOrStdout(), f, parent)
	}

	path, err := flags.config.find()
	if err != nil {
		return err
	}
	lastHash := ""
	check := func(path string) {
		// Editors often write the same content twice on save.
		if hash, err := cuecfg.FileHash(path); err == nil {
			if hash == lastHash {
				return
			}
			lastHash = hash
		}
		f, err := ecosystem.Load(path)
		if err == nil {
			err = checkApps(cmd.Context(), cmd.OutOrStdout(), f, parent)
		}
		if err != nil {
			ux.Ferror(cmd.ErrOrStderr(), "%s\n", err)
		}
	}
	check(path)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ux.Finfo(cmd.ErrOrStderr(), "Watching %s for changes. Press Ctrl-C to stop.\n", path)
	return services.Watch(ctx, &services.WatchOpts{
		Path:     path,
		OnChange: check,
		Writer:   cmd.ErrOrStderr(),
	})
}

type appCheck struct {
	problems []string
	warnings []string
}

// checkApps checks every app concurrently and reports the results in
// declaration order.
func checkApps(ctx context.Context, w io.Writer, f *ecosystem.File, parent map[string]string) error {
	results := make([]appCheck, len(f.Apps))
	group, _ := errgroup.WithContext(ctx)
	for i := range f.Apps {
		group.Go(func() error {
			results[i] = checkApp(f, &f.Apps[i], parent)
			return nil
		})
	}
	_ = group.Wait()

	failed := 0
	for i, app := range f.Apps {
		res := results[i]
		if len(res.problems) == 0 {
			color.New(color.FgHiGreen).Fprint(w, "ok")
			fmt.Fprintf(w, "    %s\n", app.Name)
		} else {
			failed++
			color.New(color.FgHiRed).Fprint(w, "FAIL")
			fmt.Fprintf(w, "  %s\n", app.Name)
		}
		for _, p := range res.problems {
			fmt.Fprintf(w, "      - %s\n", p)
		}
		for _, warning := range res.warnings {
			fmt.Fprintf(w, "      warning: %s\n", warning)
		}
	}
	if failed > 0 {
		return usererr.New("%d of %d apps failed the check", failed, len(f.Apps))
	}
	return nil
}

func checkApp(f *ecosystem.File, app *ecosystem.App, parent map[string]string) appCheck {
	res := appCheck{}
	if _, err := app.Argv(); err != nil {
		res.problems = append(res.problems, err.Error())
	}
	env, err := envfile.Resolve(app, f.RootDir(), parent)
	if err != nil {
		res.problems = append(res.problems, err.Error())
	} else if missing := env.Unresolved(); len(missing) > 0 {
		res.problems = append(res.problems,
			"unset variables referenced by env: "+strings.Join(missing, ", "))
	}
	if err := launch.CheckExecutable(f, app); err != nil {
		res.warnings = append(res.warnings, err.Error())
	}
	return res
}
