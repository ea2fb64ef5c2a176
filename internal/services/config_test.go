package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.filebox.dev/filebox/internal/ecosystem"
)

func TestFromEcosystem(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("MINIO_ACCESS_KEY=filebox\nMINIO_SECRET_KEY=secret\n"), 0o600))

	f := ecosystem.Default()
	f.AbsRootPath = filepath.Join(dir, ecosystem.DefaultName)

	pc, err := FromEcosystem(f, map[string]string{"HOME": "/home/u"})
	require.NoError(t, err)

	want := &ProcessComposeYaml{
		Version: processComposeVersion,
		Processes: map[string]Process{
			"minio": {
				Command:    "minio server ./minio-data --address :3334",
				WorkingDir: dir,
				Environment: []string{
					"MINIO_ACCESS_KEY=filebox",
					"MINIO_ROOT_PASSWORD=secret",
					"MINIO_ROOT_USER=filebox",
					"MINIO_SECRET_KEY=secret",
				},
			},
			"minio-ui": {
				Command:    "filebox serve --port 3333",
				WorkingDir: dir,
				Environment: []string{
					"MINIO_ACCESS_KEY=filebox",
					"MINIO_SECRET_KEY=secret",
				},
			},
		},
	}
	for name, p := range want.Processes {
		p.Availability.Restart = RestartOnFailure
		want.Processes[name] = p
	}
	if diff := cmp.Diff(want, pc); diff != "" {
		t.Errorf("wrong process-compose config (-want +got):\n%s", diff)
	}
}

func TestFromEcosystemQuotesArgs(t *testing.T) {
	f := &ecosystem.File{
		AbsRootPath: filepath.Join(t.TempDir(), ecosystem.DefaultName),
		Apps: []ecosystem.App{
			{Name: "seed", Script: "seed.py", Interpreter: "python3", Args: `--msg 'hello world'`},
		},
	}
	pc, err := FromEcosystem(f, nil)
	require.NoError(t, err)
	assert.Equal(t, `python3 seed.py --msg 'hello world'`, pc.Processes["seed"].Command)
}

func TestFromEcosystemUnresolved(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), nil, 0o600))

	f := ecosystem.Default()
	f.AbsRootPath = filepath.Join(dir, ecosystem.DefaultName)
	_, err := FromEcosystem(f, nil)
	assert.ErrorContains(t, err, `app "minio" references unset variables`)
}

func TestWriteAndReadProcessCompose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", ProcessComposeFileName)
	pc := &ProcessComposeYaml{
		Version: processComposeVersion,
		Processes: map[string]Process{
			"minio": {Command: "minio server ./minio-data", Environment: []string{"A=1"}},
		},
	}
	require.NoError(t, WriteProcessCompose(path, pc))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	got, err := ReadProcessCompose(path)
	require.NoError(t, err)
	if diff := cmp.Diff(pc, got); diff != "" {
		t.Errorf("wrong process-compose config (-want +got):\n%s", diff)
	}
}

func TestLookupProcessComposeOverride(t *testing.T) {
	testCases := []struct {
		dir      string
		existing []string
		expected string
	}{
		{
			dir:      "",
			existing: []string{},
			expected: "",
		},
		{
			dir:      "",
			existing: []string{"process-compose.override.yaml"},
			expected: "process-compose.override.yaml",
		},
		{
			dir:      "",
			existing: []string{"process-compose.override.yml"},
			expected: "process-compose.override.yml",
		},
		{
			dir:      "",
			existing: []string{"process-compose.override.yml", "process-compose.override.yaml"},
			expected: "process-compose.override.yaml",
		},
		{
			dir:      "sub",
			existing: []string{"sub/process-compose.override.yml"},
			expected: "sub/process-compose.override.yml",
		},
		{
			dir:      "sub",
			existing: []string{"process-compose.override.yml"},
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			tmp := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(tmp, "sub"), 0o755))
			for _, name := range tc.existing {
				require.NoError(t, os.WriteFile(filepath.Join(tmp, name), nil, 0o644))
			}

			got := LookupProcessComposeOverride(filepath.Join(tmp, tc.dir))
			want := ""
			if tc.expected != "" {
				want = filepath.Join(tmp, tc.expected)
			}
			assert.Equal(t, want, got)
		})
	}
}
