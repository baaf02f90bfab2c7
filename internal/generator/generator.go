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

// Package generator builds the ordered list of PDUs that deliver one
// message, per the pack algorithm: apply pre-boundary codecs to the
// whole message, split into chunks (or fountain symbols), then apply
// post-boundary codecs to each resulting PDU independently.
package generator

import (
	"errors"
	"fmt"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/config"
	"github.com/loic-fejoz/hqfbp-go/internal/encoding"
	"github.com/loic-fejoz/hqfbp-go/internal/header"
	"github.com/loic-fejoz/hqfbp-go/internal/pdu"
)

var (
	// ErrEmptyEncodings indicates Options.ContentEncodings was empty.
	ErrEmptyEncodings = errors.New("generator: content encodings required")
	// ErrContentTooLarge indicates the message could not fit the chosen
	// block geometry.
	ErrContentTooLarge = errors.New("generator: content too large for chosen codec parameters")
)

// Options configures one call to Generate.
type Options struct {
	MIME                  string
	SrcCallsign           *string
	DstCallsign           *string
	ContentEncodings      string // CSV grammar, e.g. "gzip,h,rs(255,223)"
	AnnouncementEncodings string // CSV grammar; empty means no announcement PDU
	// FountainSymbolCount overrides how many symbols a fountain codec
	// generates. Zero picks k plus a 20% overhead margin.
	FountainSymbolCount int
}

// Generator constructs the PDU sequence for outgoing messages,
// incrementing msg_id monotonically across calls.
type Generator struct {
	registry *codec.Registry
	cfg      config.Generator
	msgID    uint64
}

// New returns a Generator starting at msg_id 0.
func New(registry *codec.Registry, cfg config.Generator) *Generator {
	return &Generator{registry: registry, cfg: cfg}
}

// Generate returns the ordered PDU byte buffers (unframed, i.e. before
// any KISS wrapping) needed to deliver message.
func (g *Generator) Generate(message []byte, opts Options) ([][]byte, error) {
	if opts.ContentEncodings == "" {
		return nil, ErrEmptyEncodings
	}
	list, err := encoding.Parse(opts.ContentEncodings)
	if err != nil {
		return nil, err
	}

	msgID := g.msgID
	g.msgID++

	messagePDUs, resolvedEncodings, err := g.buildMessage(msgID, message, list, opts)
	if err != nil {
		return nil, err
	}

	var pdus [][]byte
	if opts.AnnouncementEncodings != "" {
		annPDU, err := g.buildAnnouncement(msgID, resolvedEncodings, opts)
		if err != nil {
			return nil, fmt.Errorf("announcement: %w", err)
		}
		pdus = append(pdus, annPDU)
	}
	return append(pdus, messagePDUs...), nil
}

// buildAnnouncement constructs a preview PDU carrying resolvedEncodings
// (the message's declared encoding list with every dlen already
// substituted), so a receiver that never sees the first data PDU can
// still learn how to decode later retransmissions.
func (g *Generator) buildAnnouncement(msgID uint64, resolvedEncodings string, opts Options) ([]byte, error) {
	list, err := encoding.Parse(opts.AnnouncementEncodings)
	if err != nil {
		return nil, err
	}
	_, post, _, err := list.SplitAtBoundary()
	if err != nil {
		return nil, err
	}
	postCodecs, err := post.BuildCodecs(g.registry)
	if err != nil {
		return nil, err
	}

	h := header.Header{
		MsgID:            msgID,
		Announcement:     true,
		MIME:             strPtr(header.AnnouncementMIME),
		ContentEncodings: strPtr(resolvedEncodings),
		PDUEncodings:     strPtr(opts.AnnouncementEncodings),
		SrcCallsign:      opts.SrcCallsign,
		DstCallsign:      opts.DstCallsign,
	}
	raw, err := pdu.Marshal(h, nil)
	if err != nil {
		return nil, err
	}
	return encoding.EncodeAll(postCodecs, raw)
}

// buildMessage returns the message's PDUs and the fully dlen-resolved
// encoding list it used, for reuse by an announcement preview.
func (g *Generator) buildMessage(msgID uint64, message []byte, list encoding.List, opts Options) ([][]byte, string, error) {
	pre, post, hasBoundary, err := list.SplitAtBoundary()
	if err != nil {
		return nil, "", err
	}

	searchList := pre
	if !hasBoundary {
		searchList = post
	}
	if idx, ok := fountainIndex(g.registry, searchList); ok {
		return g.buildFountainMessage(msgID, message, searchList, idx, post, hasBoundary, opts)
	}

	content := message
	if hasBoundary {
		preCodecs, err := pre.BuildCodecs(g.registry)
		if err != nil {
			return nil, "", err
		}
		content, err = encoding.EncodeAll(preCodecs, message)
		if err != nil {
			return nil, "", fmt.Errorf("pre-boundary encode: %w", err)
		}
	}

	resolvedPost := post.ResolveDlen(len(content))
	postCodecs, err := resolvedPost.BuildCodecs(g.registry)
	if err != nil {
		return nil, "", err
	}

	chunkSize := g.chunkSize(resolvedPost)
	if chunkSize < 1 {
		return nil, "", ErrContentTooLarge
	}
	chunks := splitChunks(content, chunkSize)

	resolvedList := joinWithBoundary(pre, resolvedPost, hasBoundary)

	pdus := make([][]byte, 0, len(chunks))
	for i, chunk := range chunks {
		h := header.Header{
			MsgID:            msgID,
			ChunkIdx:         uint64(i),
			ChunkCount:       uint64(len(chunks)),
			DataLen:          uint64(len(content)),
			MIME:             optStrPtr(opts.MIME),
			SrcCallsign:      opts.SrcCallsign,
			DstCallsign:      opts.DstCallsign,
			ContentEncodings: optStrPtr(resolvedList),
			PDUEncodings:     optStrPtr(resolvedPost.String()),
		}
		raw, err := pdu.Marshal(h, chunk)
		if err != nil {
			return nil, "", err
		}
		encoded, err := encoding.EncodeAll(postCodecs, raw)
		if err != nil {
			return nil, "", fmt.Errorf("post-boundary encode chunk %d: %w", i, err)
		}
		pdus = append(pdus, encoded)
	}
	return pdus, resolvedList, nil
}

func (g *Generator) buildFountainMessage(msgID uint64, message []byte, searchList encoding.List, fountainIdx int, post encoding.List, hasBoundary bool, opts Options) ([][]byte, string, error) {
	beforeFountain := encoding.List{Entries: searchList.Entries[:fountainIdx]}
	if !hasBoundary {
		// no boundary: everything after the fountain entry is the
		// per-symbol-PDU post stack.
		post = encoding.List{Entries: searchList.Entries[fountainIdx+1:]}
	}

	beforeCodecs, err := beforeFountain.BuildCodecs(g.registry)
	if err != nil {
		return nil, "", err
	}
	content, err := encoding.EncodeAll(beforeCodecs, message)
	if err != nil {
		return nil, "", fmt.Errorf("pre-fountain encode: %w", err)
	}

	fountainEntry := searchList.Entries[fountainIdx]
	resolvedParams := make([]uint64, len(fountainEntry.Params))
	resolvedFountainParams := make([]encoding.Param, len(fountainEntry.Params))
	for i, p := range fountainEntry.Params {
		if p.IsDlen {
			resolvedParams[i] = uint64(len(content))
		} else {
			resolvedParams[i] = p.Value
		}
		resolvedFountainParams[i] = encoding.Param{Value: resolvedParams[i]}
	}
	fountain, err := g.registry.BuildFountain(fountainEntry.Tag, resolvedParams)
	if err != nil {
		return nil, "", err
	}

	// the header carries the fully-resolved stack (dlen substituted with
	// its concrete value) so a receiver can rebuild the identical
	// fountain codec without having seen the original content length.
	resolvedSearchList := encoding.List{Entries: append([]encoding.Entry{}, searchList.Entries...)}
	resolvedSearchList.Entries[fountainIdx] = encoding.Entry{Tag: fountainEntry.Tag, Params: resolvedFountainParams}

	count := opts.FountainSymbolCount
	if count == 0 && len(resolvedParams) >= 3 {
		k := int(resolvedParams[2])
		count = k + k/5 + 1 // k plus ~20% overhead
	}

	symbols, err := fountain.GenerateSymbols(content, count)
	if err != nil {
		return nil, "", err
	}

	resolvedPost := post.ResolveDlen(len(content))
	postCodecs, err := resolvedPost.BuildCodecs(g.registry)
	if err != nil {
		return nil, "", err
	}
	resolvedList := joinWithBoundary(resolvedSearchList, resolvedPost, hasBoundary)

	pdus := make([][]byte, 0, len(symbols))
	for _, sym := range symbols {
		h := header.Header{
			MsgID:            msgID,
			ChunkIdx:         uint64(sym.ESI),
			ChunkCount:       uint64(len(symbols)),
			DataLen:          uint64(len(content)),
			MIME:             optStrPtr(opts.MIME),
			SrcCallsign:      opts.SrcCallsign,
			DstCallsign:      opts.DstCallsign,
			ContentEncodings: optStrPtr(resolvedSearchList.String()),
			PDUEncodings:     optStrPtr(resolvedPost.String()),
		}
		raw, err := pdu.Marshal(h, sym.Data)
		if err != nil {
			return nil, "", err
		}
		encoded, err := encoding.EncodeAll(postCodecs, raw)
		if err != nil {
			return nil, "", fmt.Errorf("post-boundary encode symbol %d: %w", sym.ESI, err)
		}
		pdus = append(pdus, encoded)
	}
	return pdus, resolvedList, nil
}

// joinWithBoundary renders pre and post back into a single CSV encoding
// string, reinserting the "h" boundary marker when one was present.
func joinWithBoundary(pre, post encoding.List, hasBoundary bool) string {
	if !hasBoundary {
		combined := encoding.List{Entries: append(append([]encoding.Entry{}, pre.Entries...), post.Entries...)}
		return combined.String()
	}
	preStr, postStr := pre.String(), post.String()
	switch {
	case preStr == "" && postStr == "":
		return "h"
	case preStr == "":
		return "h," + postStr
	case postStr == "":
		return preStr + ",h"
	default:
		return preStr + ",h," + postStr
	}
}

// fountainIndex returns the position of the first fountain entry in
// list, if any.
func fountainIndex(r *codec.Registry, list encoding.List) (int, bool) {
	for i, e := range list.Entries {
		if r.IsFountain(e.Tag) {
			return i, true
		}
	}
	return 0, false
}

// chunkSize derives the per-PDU block size from the resolved
// post-boundary stack: an explicit chunk(n) wins, otherwise an rs(n,k)
// entry's k is used, otherwise the configured default.
func (g *Generator) chunkSize(post encoding.List) int {
	for _, e := range post.Entries {
		if e.Tag == codec.TagChunk && len(e.Params) == 1 {
			return int(e.Params[0].Value)
		}
	}
	for _, e := range post.Entries {
		if e.Tag == codec.TagReedSolomon && len(e.Params) == 2 {
			return int(e.Params[1].Value)
		}
	}
	return g.cfg.MaxPayloadSize
}

func splitChunks(content []byte, size int) [][]byte {
	if len(content) == 0 {
		return [][]byte{{}}
	}
	var chunks [][]byte
	for i := 0; i < len(content); i += size {
		end := i + size
		if end > len(content) {
			end = len(content)
		}
		chunks = append(chunks, content[i:end])
	}
	return chunks
}

func strPtr(s string) *string { return &s }

func optStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
