// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package main

import (
	"go.filebox.dev/filebox/internal/boxcli"
)

func main() {
	boxcli.Main()
}
