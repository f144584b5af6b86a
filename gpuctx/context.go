// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpuctx provides a handle to a GPU context with a dedicated
// dispatch goroutine. GPU APIs bind their state to the OS thread that
// created the context, so every call that touches textures must run on
// that thread. Context.Run marshals a closure onto the owning goroutine
// and blocks until it has completed.
//
// The actual texture operations are delegated to a TextureBackend, keeping
// device and driver specifics outside this package. Production code wires
// a wgpu-backed implementation through a gpucontext.DeviceProvider; tests
// use StubBackend.
package gpuctx

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/google/uuid"
)

// Context errors.
var (
	// ErrContextClosed is returned when running work on a closed context.
	ErrContextClosed = errors.New("gpuctx: context closed")

	// ErrNoBackend is returned when a texture operation is attempted on a
	// context created without a TextureBackend.
	ErrNoBackend = errors.New("gpuctx: no texture backend installed")
)

// Context owns a GPU context and the goroutine allowed to touch it.
//
// A Context is safe for concurrent use. Contexts created with the same
// share group (see WithShareGroup) can share texture storage; CanShare
// reports this. Whether two real driver contexts can share resources is a
// runtime property of the devices involved, which is exactly what the
// share group models.
type Context struct {
	provider gpucontext.DeviceProvider
	backend  TextureBackend

	id         uuid.UUID
	shareGroup uuid.UUID

	jobs   chan dispatchJob
	closed atomic.Bool
	quit   chan struct{}
	done   chan struct{}

	// Goroutine id of the dispatch loop, for the reentrant fast path.
	dispatchGID atomic.Uint64
}

type dispatchJob struct {
	fn   func()
	done chan struct{}
}

// Option configures a Context during creation.
type Option func(*Context)

// WithShareGroup places the context in an existing share group. Contexts
// in the same group can exchange texture storage without copies.
func WithShareGroup(group uuid.UUID) Option {
	return func(c *Context) { c.shareGroup = group }
}

// WithBackend installs the texture backend used by CreateTexture and
// friends.
func WithBackend(b TextureBackend) Option {
	return func(c *Context) { c.backend = b }
}

// New creates a context around the given device provider and starts its
// dispatch goroutine. The provider may be nil for contexts that only
// marshal work (e.g. in tests); Device and Queue then return nil.
func New(provider gpucontext.DeviceProvider, opts ...Option) *Context {
	c := &Context{
		provider:   provider,
		id:         uuid.New(),
		shareGroup: uuid.New(),
		jobs:       make(chan dispatchJob),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	started := make(chan struct{})
	go c.dispatch(started)
	<-started
	return c
}

// dispatch is the context-owning loop. It locks its OS thread for the
// lifetime of the context, as GPU APIs require.
func (c *Context) dispatch(started chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	c.dispatchGID.Store(goroutineID())
	close(started)

	for {
		select {
		case job := <-c.jobs:
			job.fn()
			close(job.done)
		case <-c.quit:
			close(c.done)
			return
		}
	}
}

// ID returns the unique identity of this context.
func (c *Context) ID() uuid.UUID { return c.id }

// ShareGroup returns the share-group identity of this context.
func (c *Context) ShareGroup() uuid.UUID { return c.shareGroup }

// Device returns the underlying GPU device, or nil without a provider.
func (c *Context) Device() gpucontext.Device {
	if c.provider == nil {
		return nil
	}
	return c.provider.Device()
}

// Queue returns the underlying GPU queue, or nil without a provider.
func (c *Context) Queue() gpucontext.Queue {
	if c.provider == nil {
		return nil
	}
	return c.provider.Queue()
}

// CanShare reports whether textures owned by other can be used directly
// on this context.
func (c *Context) CanShare(other *Context) bool {
	if other == nil {
		return false
	}
	return c.shareGroup == other.shareGroup
}

// Run executes fn on the context-owning goroutine and blocks until it
// returns. When the caller already is the owning goroutine, fn runs
// inline, so Run may be nested freely.
//
// Run has no timeout: a closure that never returns blocks the caller
// indefinitely. That is a deliberate property of the synchronous design,
// not a bug; callers must not submit unbounded work.
func (c *Context) Run(fn func()) error {
	if c.closed.Load() {
		return ErrContextClosed
	}
	if goroutineID() == c.dispatchGID.Load() {
		fn()
		return nil
	}
	job := dispatchJob{fn: fn, done: make(chan struct{})}
	select {
	case c.jobs <- job:
	case <-c.done:
		return ErrContextClosed
	}
	<-job.done
	return nil
}

// Close stops the dispatch goroutine. Pending Run calls complete first;
// Run calls after Close return ErrContextClosed. Close is idempotent.
func (c *Context) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.quit)
	<-c.done
	return nil
}
