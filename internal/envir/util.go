// Copyright 2023 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package envir

import (
	"os"
	"slices"
	"strconv"
	"strings"
)

func IsFileboxDebugEnabled() bool {
	enabled, _ := strconv.ParseBool(os.Getenv(FileboxDebug))
	return enabled
}

// PairsToMap converts KEY=value pairs, as returned by os.Environ, to a map.
// Entries without "=" are ignored.
func PairsToMap(pairs []string) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			continue
		}
		m[k] = v
	}
	return m
}

// MapToPairs is the inverse of PairsToMap. The pairs are sorted by key.
func MapToPairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + m[k]
	}
	return pairs
}
