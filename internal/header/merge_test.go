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

package header_test

import (
	"testing"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/header"
)

func TestMergerFillsUnknownFields(t *testing.T) {
	t.Parallel()
	m := header.NewMerger(42)
	m.Observe(header.Header{MsgID: 42, DataLen: 900}, codec.Quality(1))
	m.Observe(header.Header{MsgID: 42, SrcCallsign: strPtr("N0CALL")}, codec.Quality(1))

	got := m.Header()
	if got.DataLen != 900 {
		t.Errorf("expected DataLen 900 to be filled in, got %d", got.DataLen)
	}
	if got.SrcCallsign == nil || *got.SrcCallsign != "N0CALL" {
		t.Errorf("expected SrcCallsign to be filled in, got %v", got.SrcCallsign)
	}
}

func TestMergerPrefersHigherQualityOnConflict(t *testing.T) {
	t.Parallel()
	m := header.NewMerger(1)
	m.Observe(header.Header{MsgID: 1, DataLen: 100}, codec.Quality(1))
	m.Observe(header.Header{MsgID: 1, DataLen: 200}, codec.Quality(5))

	if got := m.Header().DataLen; got != 200 {
		t.Errorf("expected the higher-quality value 200 to win, got %d", got)
	}
}

func TestMergerKeepsFirstOnLowerQualityConflict(t *testing.T) {
	t.Parallel()
	m := header.NewMerger(1)
	m.Observe(header.Header{MsgID: 1, DataLen: 100}, codec.Quality(5))
	m.Observe(header.Header{MsgID: 1, DataLen: 200}, codec.Quality(1))

	if got := m.Header().DataLen; got != 100 {
		t.Errorf("expected the higher-quality first value 100 to be kept, got %d", got)
	}
}

func TestMergerAnnouncementIsSticky(t *testing.T) {
	t.Parallel()
	m := header.NewMerger(1)
	m.Observe(header.Header{MsgID: 1, Announcement: true}, codec.Quality(0))
	m.Observe(header.Header{MsgID: 1}, codec.Quality(0))

	if !m.Header().Announcement {
		t.Error("expected Announcement to remain true once observed")
	}
}
