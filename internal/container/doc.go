// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer for container engines
// (Docker/Podman) driven through their CLIs, so both share one code path
// for image builds, runs, and image lifecycle management.
package container
