// SPDX-License-Identifier: MPL-2.0

package buildfile

import (
	_ "embed"
	"fmt"
	"os"

	"envforge/pkg/cueutil"
)

//go:embed buildfile_schema.cue
var buildfileSchema string

// Parse reads and parses a build descriptor from the given path.
func Parse(path string) (*Buildfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read build descriptor at %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses build descriptor content from bytes. The document is
// unified with the embedded #Buildfile schema, decoded, defaulted, and then
// validated; all validation errors are collected before returning.
func ParseBytes(data []byte, path string) (*Buildfile, error) {
	result, err := cueutil.ParseAndDecodeString[Buildfile](
		buildfileSchema,
		data,
		"#Buildfile",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	bf := result.Value
	bf.FilePath = path
	bf.ApplyDefaults()

	if errs := bf.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return bf, nil
}
