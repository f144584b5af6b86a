// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpuctx

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// NullDeviceProvider is a gpucontext.DeviceProvider with nil
// implementations. Use it for contexts that marshal work and track
// textures through a StubBackend but have no real GPU device, e.g. in
// tests or headless runs.
type NullDeviceProvider struct{}

// Device returns nil for the null provider.
func (NullDeviceProvider) Device() gpucontext.Device { return nil }

// Queue returns nil for the null provider.
func (NullDeviceProvider) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null provider.
func (NullDeviceProvider) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns zero-value adapter details for the null provider.
func (NullDeviceProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{}
}

// SurfaceFormat returns undefined format for the null provider.
func (NullDeviceProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceProvider implements gpucontext.DeviceProvider.
var _ gpucontext.DeviceProvider = NullDeviceProvider{}
