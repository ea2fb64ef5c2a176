// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package boxcli

import (
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"go.filebox.dev/filebox/internal/boxcli/usererr"
	"go.filebox.dev/filebox/internal/debug"
	"go.filebox.dev/filebox/internal/envir"
	"go.filebox.dev/filebox/internal/fileutil"
	"go.filebox.dev/filebox/internal/server"
	"go.filebox.dev/filebox/internal/storage"
	"go.filebox.dev/filebox/internal/ux"
	"go.filebox.dev/filebox/internal/ux/stepper"
)

type serveCmdFlags struct {
	port     string
	endpoint string
	bucket   string
	region   string
	useSSL   bool
	envFile  string
}

func serveCmd() *cobra.Command {
	flags := &serveCmdFlags{}
	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the UI server that uploads files to, and serves files from, object storage",
		Long: "Run the UI server. POST /upload stores the multipart field \"file\" and " +
			"responds with its link; GET /files/<key> serves a stored file.\n\n" +
			"Credentials and settings are read from the environment (and from --env-file " +
			"when it exists): " + envir.MinioAccessKey + ", " + envir.MinioSecretKey + ", " +
			envir.BaseURL + " and " + envir.UploadToken + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCmd(cmd, flags)
		},
	}

	command.Flags().StringVar(&flags.port, "port", "3333", "port for the HTTP server")
	command.Flags().StringVar(&flags.endpoint, "endpoint", "localhost:3334", "object storage endpoint")
	command.Flags().StringVar(&flags.bucket, "bucket", "files", "bucket to store uploads in")
	command.Flags().StringVar(&flags.region, "region", storage.DefaultRegion, "object storage region")
	command.Flags().BoolVar(&flags.useSSL, "ssl", false, "connect to object storage over TLS")
	command.Flags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load if it exists")
	return command
}

func runServeCmd(cmd *cobra.Command, flags *serveCmdFlags) error {
	if fileutil.IsFile(flags.envFile) {
		// Variables already in the environment win over the file.
		if err := godotenv.Load(flags.envFile); err != nil {
			return usererr.WithUserMessage(err, "Could not read %s.", flags.envFile)
		}
	} else {
		ux.Fwarning(cmd.ErrOrStderr(), "No %s file found\n", flags.envFile)
	}

	token := os.Getenv(envir.UploadToken)
	if token == "" {
		ux.Fwarning(cmd.ErrOrStderr(), "%s is not set, all uploads will be rejected\n", envir.UploadToken)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, storage.Config{
		Endpoint:  flags.endpoint,
		AccessKey: os.Getenv(envir.MinioAccessKey),
		SecretKey: os.Getenv(envir.MinioSecretKey),
		Bucket:    flags.bucket,
		Region:    flags.region,
		UseSSL:    flags.useSSL,
	})
	if err != nil {
		return usererr.WithUserMessage(err, "Could not set up the object storage client.")
	}
	if err := ensureBucket(ctx, cmd.ErrOrStderr(), store, flags.endpoint); err != nil {
		return usererr.WithUserMessage(err, "Could not reach bucket %s at %s.", flags.bucket, flags.endpoint)
	}
	debug.Log("bucket %s ready at %s", store.Bucket(), flags.endpoint)

	ux.Finfo(cmd.ErrOrStderr(), "Serving uploads on :%s\n", flags.port)
	srv := server.New(store, server.Options{
		BaseURL:     os.Getenv(envir.BaseURL),
		UploadToken: token,
	})
	return srv.ListenAndServe(ctx, net.JoinHostPort("", flags.port))
}

// ensureBucket creates the upload bucket, with a spinner when attached to a
// terminal since MinIO may still be starting.
func ensureBucket(ctx context.Context, w io.Writer, store *storage.Store, endpoint string) error {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return store.EnsureBucket(ctx)
	}
	step := stepper.Start(w, "Connecting to object storage at %s", endpoint)
	if err := store.EnsureBucket(ctx); err != nil {
		step.Fail("Object storage at %s is not reachable", endpoint)
		return err
	}
	step.Success("Bucket %s is ready", store.Bucket())
	return nil
}
