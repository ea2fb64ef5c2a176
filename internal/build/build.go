// Copyright 2023 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package build

import (
	"os"
	"runtime"
	"strconv"
	"sync"

	"go.filebox.dev/filebox/internal/fileutil"
)

var forceProd, _ = strconv.ParseBool(os.Getenv("FILEBOX_PROD"))

// Variables in this file are set via ldflags.
var (
	IsDev      = Version == "0.0.0-dev" && !forceProd
	Version    = "0.0.0-dev"
	Commit     = "none"
	CommitDate = "unknown"
)

// User-presentable names of operating systems filebox runs on.
const (
	OSLinux  = "Linux"
	OSDarwin = "macOS"
	OSWSL    = "WSL"
)

var (
	osName string
	osOnce sync.Once
)

func OS() string {
	osOnce.Do(func() {
		switch runtime.GOOS {
		case "linux":
			osName = OSLinux
			if fileutil.Exists("/proc/sys/fs/binfmt_misc/WSLInterop") || fileutil.Exists("/run/WSL") {
				osName = OSWSL
			}
		case "darwin":
			osName = OSDarwin
		default:
			osName = runtime.GOOS
		}
	})
	return osName
}
