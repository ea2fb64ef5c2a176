// Copyright 2023 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package testframework runs filebox commands against a throwaway project
// directory.
package testframework

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type TestFilebox struct {
	t      *testing.T
	TmpDir string
}

// Open creates an empty project directory and makes it the working
// directory for the rest of the test.
func Open(t *testing.T) *TestFilebox {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return &TestFilebox{t: t, TmpDir: dir}
}

func (tf *TestFilebox) GetTestDir() string {
	return tf.TmpDir
}

// WriteFile writes a file relative to the project directory.
func (tf *TestFilebox) WriteFile(name, content string) error {
	path := filepath.Join(tf.TmpDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, []byte(content), 0o644))
}

func (tf *TestFilebox) SetEcosystemJSON(content string) error {
	return tf.WriteFile("ecosystem.json", content)
}

// RunCommand executes cmd with args and returns everything it wrote to
// stdout and stderr.
func (tf *TestFilebox) RunCommand(cmd *cobra.Command, args ...string) (string, error) {
	b := &bytes.Buffer{}
	cmd.SetErr(b)
	cmd.SetOut(b)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return b.String(), err
}
