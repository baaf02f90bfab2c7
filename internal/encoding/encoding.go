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

// Package encoding parses and represents the CSV encoding-list grammar
// that names a message's codec stack, e.g. "gzip,h,rs(255,223),repeat(2)",
// and splits it at the boundary marker into the pre-boundary (message)
// substack and the post-boundary (PDU) substack.
package encoding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
)

var (
	// ErrTwoBoundaries indicates more than one "h" entry in a list.
	ErrTwoBoundaries = errors.New("encoding: at most one boundary marker allowed")
	// ErrMalformed indicates the CSV grammar could not be parsed.
	ErrMalformed = errors.New("encoding: malformed encoding list")
)

// dlenToken is the reserved argument literal substituted with the
// post-pre-boundary message length at generation time.
const dlenToken = "dlen"

// Param is one codec argument: either a literal resolved integer or
// the still-pending dlen placeholder.
type Param struct {
	IsDlen bool
	Value  uint64
}

func (p Param) String() string {
	if p.IsDlen {
		return dlenToken
	}
	return strconv.FormatUint(p.Value, 10)
}

// Entry is one tag plus its (possibly unresolved) parameter list.
type Entry struct {
	Tag    string
	Params []Param
}

func (e Entry) String() string {
	if len(e.Params) == 0 {
		return e.Tag
	}
	parts := make([]string, len(e.Params))
	for i, p := range e.Params {
		parts[i] = p.String()
	}
	return e.Tag + "(" + strings.Join(parts, ",") + ")"
}

// resolvedParams returns the entry's parameters as plain uint64s,
// failing if any dlen placeholder has not yet been substituted.
func (e Entry) resolvedParams() ([]uint64, error) {
	out := make([]uint64, len(e.Params))
	for i, p := range e.Params {
		if p.IsDlen {
			return nil, fmt.Errorf("%w: %s still has an unresolved dlen parameter", ErrMalformed, e.Tag)
		}
		out[i] = p.Value
	}
	return out, nil
}

// List is an ordered encoding stack.
type List struct {
	Entries []Entry
}

// Parse splits a CSV encoding-list string into its entries. Commas
// inside a tag's own parenthesized argument list do not split entries.
func Parse(s string) (List, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return List{}, nil
	}
	segments, err := splitTopLevel(s)
	if err != nil {
		return List{}, err
	}
	entries := make([]Entry, 0, len(segments))
	for _, seg := range segments {
		entry, err := parseEntry(seg)
		if err != nil {
			return List{}, err
		}
		entries = append(entries, entry)
	}
	return List{Entries: entries}, nil
}

func splitTopLevel(s string) ([]string, error) {
	var segments []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced parentheses", ErrMalformed)
			}
		case ',':
			if depth == 0 {
				segments = append(segments, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced parentheses", ErrMalformed)
	}
	segments = append(segments, s[start:])
	return segments, nil
}

func parseEntry(seg string) (Entry, error) {
	seg = strings.TrimSpace(seg)
	open := strings.IndexByte(seg, '(')
	if open == -1 {
		if seg == "" {
			return Entry{}, fmt.Errorf("%w: empty entry", ErrMalformed)
		}
		return Entry{Tag: seg}, nil
	}
	if !strings.HasSuffix(seg, ")") {
		return Entry{}, fmt.Errorf("%w: %q missing closing paren", ErrMalformed, seg)
	}
	tag := seg[:open]
	argStr := seg[open+1 : len(seg)-1]
	var params []Param
	if argStr != "" {
		for _, arg := range strings.Split(argStr, ",") {
			arg = strings.TrimSpace(arg)
			if arg == dlenToken {
				params = append(params, Param{IsDlen: true})
				continue
			}
			n, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return Entry{}, fmt.Errorf("%w: %q: %w", ErrMalformed, arg, err)
			}
			params = append(params, Param{Value: n})
		}
	}
	return Entry{Tag: tag, Params: params}, nil
}

// String renders the list back into the CSV grammar, e.g. for storage
// in a Header's content_encodings/pdu_encodings fields.
func (l List) String() string {
	parts := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, ",")
}

// ResolveDlen substitutes every dlen placeholder with length, returning
// a new List; the original is left untouched.
func (l List) ResolveDlen(length int) List {
	out := List{Entries: make([]Entry, len(l.Entries))}
	for i, e := range l.Entries {
		params := make([]Param, len(e.Params))
		for j, p := range e.Params {
			if p.IsDlen {
				params[j] = Param{Value: uint64(length)}
			} else {
				params[j] = p
			}
		}
		out.Entries[i] = Entry{Tag: e.Tag, Params: params}
	}
	return out
}

// SplitAtBoundary partitions the list around the single allowed "h"
// boundary entry. hasBoundary is false when no boundary is present, in
// which case the entire stack is the post-boundary (PDU) substack.
func (l List) SplitAtBoundary() (pre, post List, hasBoundary bool, err error) {
	boundaryIdx := -1
	for i, e := range l.Entries {
		if e.Tag == codec.TagBoundary {
			if boundaryIdx != -1 {
				return List{}, List{}, false, ErrTwoBoundaries
			}
			boundaryIdx = i
		}
	}
	if boundaryIdx == -1 {
		return List{}, l, false, nil
	}
	return List{Entries: l.Entries[:boundaryIdx]}, List{Entries: l.Entries[boundaryIdx+1:]}, true, nil
}

// BuildCodecs constructs a per-PDU Codec for every entry in order,
// failing on the first unresolved dlen parameter or unknown tag.
func (l List) BuildCodecs(r *codec.Registry) ([]codec.Codec, error) {
	codecs := make([]codec.Codec, 0, len(l.Entries))
	for _, e := range l.Entries {
		params, err := e.resolvedParams()
		if err != nil {
			return nil, err
		}
		c, err := r.BuildCodec(e.Tag, params)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.Tag, err)
		}
		codecs = append(codecs, c)
	}
	return codecs, nil
}

// FountainEntry returns the single multi-PDU fountain entry in the
// list, if any. A list may carry at most one; ok is false if none is
// present.
func (l List) FountainEntry(r *codec.Registry) (Entry, bool) {
	for _, e := range l.Entries {
		if r.IsFountain(e.Tag) {
			return e, true
		}
	}
	return Entry{}, false
}

// EncodeAll runs input through every codec in order (pre-boundary
// generation direction).
func EncodeAll(codecs []codec.Codec, input []byte) ([]byte, error) {
	out := input
	for _, c := range codecs {
		next, err := c.Encode(out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Tag(), err)
		}
		out = next
	}
	return out, nil
}

// DecodeAll reverses EncodeAll, applying codecs in reverse order and
// accumulating quality across every stage.
func DecodeAll(codecs []codec.Codec, input []byte) ([]byte, codec.Quality, error) {
	out := input
	var total codec.Quality
	for i := len(codecs) - 1; i >= 0; i-- {
		c := codecs[i]
		next, q, err := c.Decode(out)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", c.Tag(), err)
		}
		out = next
		total += q
	}
	return out, total, nil
}
