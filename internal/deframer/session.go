// SPDX-License-Identifier: AGPL-3.0-or-later
// hqfbp-go - Hamradio Quick File Broadcasting Protocol implementation
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/loic-fejoz/hqfbp-go>

package deframer

import (
	"time"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/header"
)

// SessionKey identifies one in-flight message by its declared source
// callsign and msg_id. An unknown callsign is represented by "".
type SessionKey struct {
	SrcCallsign string
	MsgID       uint64
}

// sessionState is the per-session reassembly state: Empty -> Partial ->
// Complete. Complete sessions are removed rather than retained, so in
// practice only Empty and Partial are ever observed live.
type sessionState int

const (
	// StateEmpty is the (unused after creation) zero state; every
	// session is created already holding its first chunk or
	// announcement, so it never lingers here.
	StateEmpty sessionState = iota
	// StatePartial holds some but not yet all of the data needed to
	// reassemble the message.
	StatePartial
	// StateComplete is terminal; complete sessions are deleted instead
	// of kept around in this state.
	StateComplete
)

type chunkCandidate struct {
	data    []byte
	quality codec.Quality
}

// Session accumulates everything known about one (src_callsign, msg_id)
// message as its chunks or fountain symbols arrive out of order.
type Session struct {
	Key       SessionKey
	FirstSeen time.Time
	LastSeen  time.Time

	state  sessionState
	merger *header.Merger

	chunks  map[uint64]chunkCandidate
	symbols []codec.Symbol
}

func newSession(key SessionKey, now time.Time) *Session {
	return &Session{
		Key:       key,
		FirstSeen: now,
		LastSeen:  now,
		state:     StateEmpty,
		merger:    header.NewMerger(key.MsgID),
		chunks:    make(map[uint64]chunkCandidate),
	}
}

// collectedCount reports how many chunks or symbols this session has
// accumulated, for SessionTimedOut diagnostics.
func (s *Session) collectedCount() int {
	if len(s.symbols) > 0 {
		return len(s.symbols)
	}
	return len(s.chunks)
}
