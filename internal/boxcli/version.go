// Copyright 2022 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package boxcli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"go.filebox.dev/filebox/internal/build"
)

type versionFlags struct {
	verbose bool
}

func versionCmd() *cobra.Command {
	flags := versionFlags{}
	command := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionCmdFunc(cmd, args, flags)
		},
	}

	command.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, // value
		"displays additional version information",
	)
	return command
}

func versionCmdFunc(cmd *cobra.Command, _ []string, flags versionFlags) error {
	w := cmd.OutOrStdout()
	v := getVersionInfo()
	if flags.verbose {
		fmt.Fprintf(w, "Version:     %v\n", v.Version)
		fmt.Fprintf(w, "Platform:    %v\n", v.Platform)
		fmt.Fprintf(w, "OS:          %v\n", v.OS)
		fmt.Fprintf(w, "Commit:      %v\n", v.Commit)
		fmt.Fprintf(w, "Commit Time: %v\n", v.CommitDate)
		fmt.Fprintf(w, "Go Version:  %v\n", v.GoVersion)
	} else {
		fmt.Fprintf(w, "%v\n", v.Version)
	}
	return nil
}

type versionInfo struct {
	Version    string
	Platform   string
	OS         string
	Commit     string
	CommitDate string
	GoVersion  string
}

func getVersionInfo() *versionInfo {
	v := &versionInfo{
		Version:    build.Version,
		Platform:   fmt.Sprintf("%s_%s", runtime.GOOS, runtime.GOARCH),
		OS:         build.OS(),
		Commit:     build.Commit,
		CommitDate: build.CommitDate,
		GoVersion:  runtime.Version(),
	}

	return v
}
