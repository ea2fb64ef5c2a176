// Copyright 2023 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package fileutil

import (
	"os"
	"path/filepath"

	"go.filebox.dev/filebox/internal/xdg"
)

// dir path
var (
	StateDir          = xdg.StateSubpath("filebox")                   // default: ~/.local/state/filebox
	ProcessComposeDir = filepath.Join(StateDir, "process-compose") // default: ~/.local/state/filebox/process-compose
)

func EnsureDir(dir string) (string, error) {
	return dir, os.MkdirAll(dir, 0o755)
}
