// SPDX-License-Identifier: MPL-2.0

// envforge builds reproducible container images from declarative build
// descriptors.
package main

import (
	cmd "envforge/cmd/envforge"
)

func main() {
	cmd.Execute()
}
