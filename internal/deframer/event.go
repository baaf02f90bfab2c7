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
	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/header"
)

// EventKind discriminates the three event shapes a Deframer produces.
type EventKind int

const (
	// EventAnnouncementReceived fires when an announcement PDU for a
	// new or existing session is ingested.
	EventAnnouncementReceived EventKind = iota
	// EventMessageReceived fires once a session's message has been
	// fully reassembled and its pre-boundary stack reversed.
	EventMessageReceived
	// EventSessionTimedOut fires when a session is evicted, whether by
	// idle timeout, shutdown drain, or an unrecoverable pre-boundary
	// decode failure after reassembly.
	EventSessionTimedOut
)

// Event is the Deframer's single output type; which fields are
// meaningful depends on Kind.
type Event struct {
	Kind EventKind
	Key  SessionKey

	// Header is the session's merged header at the time of the event.
	Header header.Header

	// Payload and Quality are set on EventMessageReceived: the fully
	// decoded message bytes and the total accumulated decode quality
	// across every FEC and fountain stage.
	Payload []byte
	Quality codec.Quality

	// DeclaredContentEncodings and DeclaredPDUEncodings are set on
	// EventAnnouncementReceived: the CSV encoding lists the
	// announcement declares for the forthcoming message.
	DeclaredContentEncodings string
	DeclaredPDUEncodings     string

	// CollectedChunks is set on EventSessionTimedOut: how many chunks
	// or fountain symbols the session had accumulated before eviction.
	CollectedChunks int
}
