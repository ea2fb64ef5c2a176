package services

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strconv"

	"go.filebox.dev/filebox/internal/boxcli/usererr"
	"go.filebox.dev/filebox/internal/cmdutil"
	"go.filebox.dev/filebox/internal/debug"
)

const ProcessComposeBin = "process-compose"

type ManagerOpts struct {
	// Bin is the process-compose executable. Defaults to the one on PATH.
	Bin   string
	Files []string
	// Port is the process-compose API port. 0 picks one.
	Port   int
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StartProcessManager runs process-compose in the foreground over the given
// files and returns when it exits.
func StartProcessManager(ctx context.Context, opts ManagerOpts) error {
	bin := opts.Bin
	if bin == "" {
		if !cmdutil.Exists(ProcessComposeBin) {
			return usererr.New("%s was not found in PATH. Install it to run services, "+
				"or use `filebox apps export` with another process manager.", ProcessComposeBin)
		}
		bin = cmdutil.GetPathOrDefault(ProcessComposeBin, ProcessComposeBin)
	}
	port, err := selectPort(opts.Port)
	if err != nil {
		return err
	}

	flags := []string{"-p", strconv.Itoa(port)}
	for _, file := range opts.Files {
		flags = append(flags, "-f", file)
	}
	cmd := exec.CommandContext(ctx, bin, flags...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	debug.Log("starting process manager: %s", cmd)
	err = cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return usererr.NewExecError(err)
	}
	return usererr.NewExecCmdError(cmd, err)
}
