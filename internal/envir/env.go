// Copyright 2024 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package envir

const (
	FileboxConfig = "FILEBOX_CONFIG"
	FileboxDebug  = "FILEBOX_DEBUG"
	// FileboxPCPort overrides the port process-compose listens on.
	FileboxPCPort = "FILEBOX_PC_PORT_NUM"

	XDGStateHome = "XDG_STATE_HOME"
)

// UI server
const (
	MinioAccessKey = "MINIO_ACCESS_KEY"
	MinioSecretKey = "MINIO_SECRET_KEY"
	BaseURL        = "BASE_URL"
	UploadToken    = "UPLOAD_TOKEN"
)

// system
const (
	Home = "HOME"
	Path = "PATH"
	PWD  = "PWD"
)
