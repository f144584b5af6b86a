// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package texupload negotiates and executes the transfer of video frames
// from arbitrary producer memory into GPU textures.
//
// # Overview
//
// A Session owns a fixed, priority-ordered catalog of upload strategies:
// texture passthrough, platform image import, producer-driven callback
// upload, and raw host-memory copy. Negotiation fixes the frame format
// once via SetCaps; each Upload then walks the catalog, trying the
// cheapest strategy that accepts the frame and falling back on failure.
// The raw copy strategy is the universal last resort.
//
// # Quick Start
//
//	ctx := gpuctx.New(provider, gpuctx.WithBackend(backend))
//	defer ctx.Close()
//	sess := texupload.New(ctx)
//	defer sess.Close()
//
//	if err := sess.SetCaps(in, out); err != nil {
//		return err
//	}
//	out, err := sess.Upload(frame)
//	if err != nil {
//		return err
//	}
//	defer out.Unref()
//
// # Thread Affinity
//
// All GPU work is marshaled onto the context's dispatch goroutine by
// gpuctx.Context.Run, so Session methods may be called from any
// goroutine. A Session serializes its own operations; use one session
// per stream.
package texupload
