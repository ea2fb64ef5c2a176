// Copyright 2024 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package xdg

import (
	"os"
	"path/filepath"

	"go.filebox.dev/filebox/internal/envir"
)

// StateSubpath returns subpath inside $XDG_STATE_HOME, which defaults to
// ~/.local/state.
func StateSubpath(subpath string) string {
	return filepath.Join(resolveDir(envir.XDGStateHome, ".local/state"), subpath)
}

func resolveDir(envvar, defaultPath string) string {
	dir := os.Getenv(envvar)
	if dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}

	return filepath.Join(home, defaultPath)
}
