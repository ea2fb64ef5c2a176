// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package cuecfg

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
)

const Indent = "  "

// MarshalJSON marshals the given value to JSON. It does not HTML escape and
// adds standard indentation.
func MarshalJSON(v any) ([]byte, error) {
	buff := &bytes.Buffer{}
	e := json.NewEncoder(buff)
	e.SetIndent("", Indent)
	e.SetEscapeHTML(false)
	if err := e.Encode(v); err != nil {
		return nil, errors.WithStack(err)
	}
	return bytes.TrimRight(buff.Bytes(), "\n"), nil
}

// unmarshalJSON accepts JWCC (JSON with comments and trailing commas), which
// is what hand-written ecosystem files tend to contain.
func unmarshalJSON(data []byte, v any) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(std, v)
}
