// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error infrastructure: actionable
// errors with fix suggestions, and a catalog of known failure modes
// rendered as markdown help pages.
package issue
