// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/texupload/caps"
	"github.com/gogpu/texupload/gpuctx"
	"github.com/gogpu/texupload/media"
)

// Session negotiates and executes frame uploads onto one GPU context.
//
// A session walks the strategy catalog in priority order on every
// Upload: the first strategy that accepts the frame performs it, and
// perform failures advance to the next candidate. Selection state
// persists across calls, so a stream that settled on a strategy pays
// only one accept check per frame.
//
// Session methods are safe for concurrent use; operations are serialized
// by an internal mutex. Use one session per stream.
type Session struct {
	mu sync.Mutex

	ctx *gpuctx.Context
	id  uuid.UUID
	log *slog.Logger

	inCaps  caps.Caps
	outCaps caps.Caps

	inFormat  media.Format
	outFormat media.Format

	cur     *strategy
	curInst strategyInstance
	nextIdx int

	// instanceCreates counts strategy instantiations, for churn tests.
	instanceCreates int

	closed bool
}

// New creates a session bound to the given GPU context.
func New(ctx *gpuctx.Context, opts ...Option) *Session {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}
	id := uuid.New()
	return &Session{
		ctx: ctx,
		id:  id,
		log: log.With("session", id.String()),
	}
}

// ID returns the unique identity of this session.
func (s *Session) ID() uuid.UUID { return s.id }

// Context returns the GPU context uploads target.
func (s *Session) Context() *gpuctx.Context { return s.ctx }

// SetCaps fixes the negotiated input and output caps. The input caps
// must be fixed; the output format falls back to the input format when
// the output caps are not fully resolved, keeping any texture-target
// preference the output caps carry.
//
// Setting caps equal to the current ones is a no-op. Otherwise any
// selected strategy is discarded and the next Upload restarts the
// catalog walk from the highest-priority strategy.
func (s *Session) SetCaps(in, out caps.Caps) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.inCaps.IsEmpty() && s.inCaps.Equal(in) && s.outCaps.Equal(out) {
		return nil
	}
	if !in.IsFixed() {
		return fmt.Errorf("%w: input caps not fixed: %v", ErrInvalidFormat, in)
	}
	inFmt, err := media.FormatFromCaps(in)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	outFmt, err := media.FormatFromCaps(out)
	if err != nil {
		outFmt = inFmt
		outFmt.Target = textureTargetFromCaps(out, inFmt.Target)
	}

	s.dropInstance()
	s.nextIdx = 0
	s.inCaps = in.Clone()
	s.outCaps = out.Clone()
	s.inFormat = inFmt
	s.outFormat = outFmt
	s.log.Info("format fixed", "in", inFmt.String(), "out", outFmt.String())
	return nil
}

// textureTargetFromCaps reads the texture-target field of the first
// structure, if any.
func textureTargetFromCaps(c caps.Caps, def media.TextureTarget) media.TextureTarget {
	if c.IsEmpty() {
		return def
	}
	if name, ok := c.At(0).GetString(media.FieldTextureTarget); ok {
		return media.ParseTextureTarget(name)
	}
	return def
}

// Caps returns the negotiated input and output caps.
func (s *Session) Caps() (in, out caps.Caps) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inCaps, s.outCaps
}

// Formats returns the resolved input and output formats.
func (s *Session) Formats() (in, out media.Format) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFormat, s.outFormat
}

// CurrentStrategy returns the name of the selected strategy, or "" when
// none has been selected yet.
func (s *Session) CurrentStrategy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.name
}

// ProposeAllocation lets every strategy decorate an allocation query
// with its allocator, pool and metadata preferences. Strategies are
// consulted in catalog order so higher-priority proposals come first.
func (s *Session) ProposeAllocation(q *media.AllocationQuery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, st := range strategies {
		inst := st.create(s)
		inst.proposeAllocation(q)
		inst.free()
	}
}

// Upload transfers one frame into GPU textures and returns the
// resulting texture-backed frame. The caller owns a reference on the
// returned frame and must Unref it; the input frame's references are
// untouched.
//
// Strategy selection is sticky. The selected strategy handles frames
// until one of:
//   - it rejects a frame: the session tries the remaining candidates,
//     and with none left returns ErrNoCompatibleStrategy;
//   - it fails performing: the session advances likewise, returning
//     ErrUploadFailed when candidates run out;
//   - it reports an unshareable texture context: the session jumps
//     directly to the raw copy strategy and retries the same frame.
//
// A raw copy failure is terminal for the frame. There is nothing
// cheaper left to fall back to.
func (s *Session) Upload(frame *media.Frame) (*media.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if !s.inFormat.IsValid() {
		return nil, fmt.Errorf("%w: no format negotiated", ErrInvalidFormat)
	}

	if s.curInst == nil && !s.advance() {
		return nil, ErrNoCompatibleStrategy
	}

	for {
		if !s.curInst.accept(frame, s.inCaps, s.outCaps) {
			s.log.Debug("strategy rejected frame", "strategy", s.cur.name)
			s.dropInstance()
			if !s.advance() {
				return nil, ErrNoCompatibleStrategy
			}
			continue
		}

		out, res := s.curInst.perform(frame)
		switch res {
		case resultDone:
			if out != frame {
				out.CopyMetaFrom(frame)
			}
			return out, nil

		case resultUnsharedContext:
			// Discoverable only at perform time. Jump straight to the
			// universal copy path and retry this frame; the catalog
			// cursor is left alone so later failures keep advancing
			// from where they were.
			s.log.Warn("texture context not shareable, using raw copy",
				"strategy", s.cur.name)
			s.dropInstance()
			s.cur = rawUploadStrategy
			s.curInst = s.newInstance(rawUploadStrategy)

		case resultError:
			failed := s.cur
			s.log.Warn("strategy failed to upload", "strategy", failed.name)
			s.dropInstance()
			if failed == rawUploadStrategy || !s.advance() {
				return nil, ErrUploadFailed
			}
		}
	}
}

// advance selects the next candidate strategy, creating its instance.
// It reports false when the catalog is exhausted.
func (s *Session) advance() bool {
	if s.nextIdx >= len(strategies) {
		return false
	}
	s.cur = strategies[s.nextIdx]
	s.nextIdx++
	s.curInst = s.newInstance(s.cur)
	s.log.Debug("trying upload strategy", "strategy", s.cur.name)
	return true
}

func (s *Session) newInstance(st *strategy) strategyInstance {
	s.instanceCreates++
	return st.create(s)
}

// dropInstance frees the selected strategy instance, if any.
func (s *Session) dropInstance() {
	if s.curInst != nil {
		s.curInst.free()
		s.curInst = nil
	}
	s.cur = nil
}

// Close releases the session's strategy state. The GPU context is not
// closed; the session does not own it. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.dropInstance()
	s.closed = true
	return nil
}
