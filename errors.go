// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raydemo

import "errors"

// Setup failures. Each is fatal for the surface that hit it; there is no
// retry path.
var (
	// ErrUnsupportedPlatform reports that no GPU capability is available at all.
	ErrUnsupportedPlatform = errors.New("raydemo: GPU rendering is not supported on this platform")

	// ErrNoAdapter reports that no compatible adapter or device could be acquired.
	ErrNoAdapter = errors.New("raydemo: no compatible GPU adapter")

	// ErrNoContext reports that a surface could not obtain a rendering context.
	ErrNoContext = errors.New("raydemo: surface has no rendering context")
)

var (
	// ErrSceneCapacity is returned when a grid does not fit the sphere buffer.
	ErrSceneCapacity = errors.New("raydemo: scene exceeds sphere capacity")

	// ErrInvalidSize is returned for non-positive surface dimensions.
	ErrInvalidSize = errors.New("raydemo: invalid surface size")

	// ErrNotStarted is returned by operations that need Start to have succeeded.
	ErrNotStarted = errors.New("raydemo: app not started")
)

// ErrNoSnapshot is returned when a backend cannot read back rendered frames.
var ErrNoSnapshot = errors.New("raydemo: backend does not support snapshots")
