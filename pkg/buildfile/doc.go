// SPDX-License-Identifier: MPL-2.0

// Package buildfile defines the declarative build descriptor that envforge
// turns into a container image: a pinned base runtime image, environment
// flags, an OS package stage for native rendering libraries, an application
// install from a local source tree, and extra published packages.
//
// Descriptors are CUE documents validated against the embedded #Buildfile
// schema. Constraints the schema cannot express (shell syntax in script
// hooks, package spec shapes) are enforced by Validate.
package buildfile
