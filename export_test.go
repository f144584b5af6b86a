// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

// InstanceCreates reports how many strategy instances the session has
// created, for churn assertions.
func (s *Session) InstanceCreates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instanceCreates
}
