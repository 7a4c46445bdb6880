// SPDX-License-Identifier: MPL-2.0

// Package provision turns a parsed build descriptor into a container
// image: it plans the build stages, renders them into a deterministic
// Dockerfile, and drives a container engine to build a content-addressed,
// cached image.
package provision
