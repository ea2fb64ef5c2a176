package ecosystem

// Default returns the ecosystem filebox init writes: a MinIO object-storage
// server and the filebox UI server in front of it. Both read credentials from
// .env; MinIO takes its root user from the access key pair.
func Default() *File {
	return &File{
		Apps: []App{
			{
				Name:    "minio",
				Script:  "minio",
				Args:    "server ./minio-data --address :3334",
				EnvFile: ".env",
				Env: map[string]string{
					"MINIO_ROOT_USER":     "${MINIO_ACCESS_KEY}",
					"MINIO_ROOT_PASSWORD": "${MINIO_SECRET_KEY}",
				},
			},
			{
				Name:        "minio-ui",
				Script:      "filebox",
				Args:        "serve --port 3333",
				Interpreter: InterpreterNone,
				EnvFile:     ".env",
			},
		},
	}
}
