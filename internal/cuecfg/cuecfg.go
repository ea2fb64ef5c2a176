// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package cuecfg encodes and decodes config values in the formats filebox
// accepts for ecosystem files, picking the codec from the file extension.
package cuecfg

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

func Marshal(valuePtr any, extension string) ([]byte, error) {
	switch extension {
	case ".json", ".jsonc":
		return MarshalJSON(valuePtr)
	case ".yml", ".yaml":
		return marshalYaml(valuePtr)
	case ".toml":
		return marshalToml(valuePtr)
	}
	return nil, errors.Errorf("Unsupported file format '%s' for config file", extension)
}

func Unmarshal(data []byte, extension string, valuePtr any) error {
	switch extension {
	case ".json", ".jsonc":
		return errors.WithStack(unmarshalJSON(data, valuePtr))
	case ".yml", ".yaml":
		return errors.WithStack(unmarshalYaml(data, valuePtr))
	case ".toml":
		return errors.WithStack(unmarshalToml(data, valuePtr))
	}
	return errors.Errorf("Unsupported file format '%s' for config file", extension)
}

// InitFile writes valuePtr to path unless a file already exists there. It
// reports whether a new file was created.
func InitFile(path string, valuePtr any) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, WriteFile(path, valuePtr)
	}
	return false, errors.WithStack(err)
}

func ParseFile(path string, valuePtr any) error {
	return ParseFileWithExtension(path, filepath.Ext(path), valuePtr)
}

// ParseFileWithExtension lets the caller override the extension of the `path` filename.
// For example, an extensionless ecosystem file can be treated as .json.
func ParseFileWithExtension(path, ext string, valuePtr any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}

	return Unmarshal(data, ext, valuePtr)
}

func WriteFile(path string, value any) error {
	data, err := Marshal(value, filepath.Ext(path))
	if err != nil {
		return errors.WithStack(err)
	}
	data = append(data, '\n')
	return errors.WithStack(os.WriteFile(path, data, 0o644))
}

func IsSupportedExtension(ext string) bool {
	switch ext {
	case ".json", ".jsonc", ".yml", ".yaml", ".toml":
		return true
	default:
		return false
	}
}
