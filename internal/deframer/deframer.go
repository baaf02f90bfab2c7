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

// Package deframer implements the receive-side reassembly engine: it
// turns a stream of candidate PDU byte buffers into AnnouncementReceived,
// MessageReceived and SessionTimedOut events, tracking one Session per
// (src_callsign, msg_id) pair until it completes or times out.
package deframer

import (
	"errors"
	"fmt"
	"time"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/config"
	"github.com/loic-fejoz/hqfbp-go/internal/encoding"
	"github.com/loic-fejoz/hqfbp-go/internal/header"
	"github.com/loic-fejoz/hqfbp-go/internal/metrics"
	"github.com/loic-fejoz/hqfbp-go/internal/pdu"
	"github.com/loic-fejoz/hqfbp-go/internal/queue"
)

// ErrNoCandidateStack indicates none of the direct, configured, or
// learned post-boundary codec stacks could turn raw bytes into a
// parseable PDU header.
var ErrNoCandidateStack = errors.New("deframer: no candidate codec stack decoded this PDU")

const eventsKey = "events"

// defaultMaxRecursionDepth bounds recursive unpacking when the caller's
// config leaves MaxRecursionDepth unset, matching the depth chosen to
// block adversarial nesting without rejecting any legitimate stack
// this module builds (none nests more than two or three layers deep).
const defaultMaxRecursionDepth = 8

type candidateStack struct {
	encodings string // "" denotes the bare, uncoded candidate
	codecs    []codec.Codec
}

// Deframer is a single-owner, non-blocking reassembly engine. It holds
// no locks: callers must confine one Deframer to one goroutine, running
// several in parallel (one per stream) if needed.
type Deframer struct {
	registry *codec.Registry
	cfg      config.Deframer
	metrics  *metrics.Metrics

	defaults []candidateStack
	learned  []candidateStack // most-recently-learned first, deduplicated

	sessions  map[SessionKey]*Session
	completed map[SessionKey]time.Time // completion time, for redelivery suppression
	events    *queue.Queue[Event]
}

// New returns a Deframer seeded with the post-boundary codec stacks
// already known for data and announcement PDUs (commonly the same
// strings a paired Generator was configured with). Either may be empty
// if that kind of PDU is never sent bare-without-hints; the deframer
// still tries direct, uncoded unpacking before anything else.
func New(registry *codec.Registry, cfg config.Deframer, m *metrics.Metrics, knownDataEncodings, knownAnnouncementEncodings string) (*Deframer, error) {
	d := &Deframer{
		registry:  registry,
		cfg:       cfg,
		metrics:   m,
		sessions:  make(map[SessionKey]*Session),
		completed: make(map[SessionKey]time.Time),
		events:    queue.NewQueue[Event](),
	}
	for _, enc := range []string{knownDataEncodings, knownAnnouncementEncodings} {
		if enc == "" {
			continue
		}
		stack, err := buildCandidateStack(registry, enc)
		if err != nil {
			return nil, fmt.Errorf("deframer: configured encodings %q: %w", enc, err)
		}
		d.defaults = append(d.defaults, stack)
	}
	return d, nil
}

func buildCandidateStack(r *codec.Registry, csv string) (candidateStack, error) {
	list, err := encoding.Parse(csv)
	if err != nil {
		return candidateStack{}, err
	}
	_, post, _, err := list.SplitAtBoundary()
	if err != nil {
		return candidateStack{}, err
	}
	codecs, err := post.BuildCodecs(r)
	if err != nil {
		return candidateStack{}, err
	}
	return candidateStack{encodings: csv, codecs: codecs}, nil
}

// ReceiveBytes ingests one candidate PDU buffer (already stripped of
// any KISS framing). It never blocks and never raises a fatal error:
// a non-nil return means this particular buffer was malformed or
// undecodable with every known stack; the caller should log it and
// keep feeding subsequent buffers. Use NextEvent to drain whatever
// events this call produced.
func (d *Deframer) ReceiveBytes(raw []byte, now time.Time) error {
	p, quality, encodings, err := d.unpack(raw)
	if err != nil {
		d.recordIngested("malformed")
		return err
	}
	d.recordIngested("accepted")
	d.ingest(p, quality, encodings, now)
	return nil
}

// unpack tries a direct header parse first. A PDU sent with no
// post-boundary codecs at all (its header declares an empty
// pdu_encodings) is trusted immediately. But some post-boundary codecs
// (CRC, repeat, systematic Reed-Solomon) leave the header's CBOR prefix
// intact, so a direct parse can "succeed" on a buffer that was in fact
// coded; in that case the header's own declared pdu_encodings names the
// exact stack to decode with, so that is tried before anything is
// trusted. When the header prefix itself was scrambled (direct parse
// fails outright), or the declared stack does not decode to a further
// PDU, this falls back to guessing among the known and learned
// post-boundary stacks.
//
// Peeling one layer can itself yield bytes that parse as another PDU
// header declaring its own pdu_encodings (nested FEC, or a gateway
// stacking a second coding layer atop an already-framed buffer); unpack
// recurses into that layer rather than trusting the first parse that
// succeeds. A decoded layer whose header declares exactly the stack
// just peeled to reach it, or from which nothing decodes any further,
// is the innermost PDU. MaxRecursionDepth bounds how many layers deep
// this goes, so a chain of self-referential declared encodings can't
// recurse forever.
func (d *Deframer) unpack(raw []byte) (pdu.PDU, codec.Quality, string, error) {
	depth := d.cfg.MaxRecursionDepth
	if depth <= 0 {
		depth = defaultMaxRecursionDepth
	}
	return d.unpackDepth(raw, depth, "")
}

// unpackDepth peels raw; peeled is the encoding string an outer level
// just decoded to produce raw, or "" at the outermost level.
func (d *Deframer) unpackDepth(raw []byte, depth int, peeled string) (pdu.PDU, codec.Quality, string, error) {
	if depth <= 0 {
		return pdu.PDU{}, 0, "", ErrNoCandidateStack
	}

	p, parseErr := pdu.Parse(raw)
	if parseErr == nil {
		declared := derefOr(p.Header.PDUEncodings, "")
		if declared == "" || declared == peeled {
			return p, 0, "", nil
		}
		if stack, err := buildCandidateStack(d.registry, declared); err == nil {
			if content, quality, ok := decodeBytes(stack.codecs, raw); ok {
				if nested, nestedQuality, nestedEncodings, err := d.unpackDepth(content, depth-1, declared); err == nil {
					return nested, quality + nestedQuality, joinLayers(declared, nestedEncodings), nil
				}
			}
		}
		// the declared stack itself didn't decode cleanly (e.g. the
		// pdu_encodings field was corrupted), or what it peeled off
		// wasn't a further-parseable PDU; fall through to guessing.
	}

	for _, stack := range d.candidateStacks() {
		content, quality, ok := decodeBytes(stack.codecs, raw)
		if !ok {
			continue
		}
		if nested, nestedQuality, nestedEncodings, err := d.unpackDepth(content, depth-1, stack.encodings); err == nil {
			return nested, quality + nestedQuality, joinLayers(stack.encodings, nestedEncodings), nil
		}
	}
	if peeled != "" && parseErr == nil {
		// an outer level already decoded raw cleanly and nothing peels
		// any further: raw is the innermost PDU.
		return p, 0, "", nil
	}
	return pdu.PDU{}, 0, "", ErrNoCandidateStack
}

// joinLayers combines the encodings consumed at this recursion level
// with whatever a deeper nested layer reported, outermost first, so a
// multi-layer peel reports the full stack rather than just its
// outermost ring.
func joinLayers(outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	default:
		return outer + "," + inner
	}
}

func decodeBytes(codecs []codec.Codec, raw []byte) ([]byte, codec.Quality, bool) {
	content, quality, err := encoding.DecodeAll(codecs, raw)
	if err != nil {
		return nil, 0, false
	}
	return content, quality, true
}

func (d *Deframer) candidateStacks() []candidateStack {
	out := make([]candidateStack, 0, len(d.defaults)+len(d.learned))
	out = append(out, d.defaults...)
	out = append(out, d.learned...)
	return out
}

// learn records a post-boundary encoding string discovered from a
// decoded header (an announcement's pdu_encodings, most commonly) as a
// future candidate stack, most-recent first, deduplicated.
func (d *Deframer) learn(encodings string) {
	if encodings == "" {
		return
	}
	for _, s := range d.defaults {
		if s.encodings == encodings {
			return
		}
	}
	for i, s := range d.learned {
		if s.encodings == encodings {
			d.learned = append(d.learned[:i], d.learned[i+1:]...)
			break
		}
	}
	stack, err := buildCandidateStack(d.registry, encodings)
	if err != nil {
		return
	}
	d.learned = append([]candidateStack{stack}, d.learned...)
	const maxLearned = 8
	if len(d.learned) > maxLearned {
		d.learned = d.learned[:maxLearned]
	}
}

func (d *Deframer) ingest(p pdu.PDU, quality codec.Quality, sourceEncodings string, now time.Time) {
	if p.Header.PDUEncodings != nil {
		d.learn(*p.Header.PDUEncodings)
	} else if sourceEncodings != "" {
		d.learn(sourceEncodings)
	}

	key := sessionKeyOf(p.Header)
	if _, done := d.completed[key]; done {
		// this session already emitted MessageReceived; a redelivered
		// chunk or duplicate fountain symbol must not re-create it or
		// emit a second event for the same message.
		return
	}
	sess := d.getOrCreateSession(key, now)
	sess.LastSeen = now
	sess.merger.Observe(p.Header, quality)

	if p.Header.Announcement {
		sess.state = StatePartial
		h := sess.merger.Header()
		if h.ContentEncodings != nil {
			// an announcement's content_encodings is the data message's
			// own fully-resolved stack, not the announcement's wire
			// encoding; learning it lets the next data PDU decode even
			// if its post-boundary codecs were never configured.
			d.learn(*h.ContentEncodings)
		}
		d.pushEvent(Event{
			Kind:                     EventAnnouncementReceived,
			Key:                      key,
			Header:                   h,
			DeclaredContentEncodings: derefOr(h.ContentEncodings, ""),
			DeclaredPDUEncodings:     derefOr(h.PDUEncodings, ""),
		})
		d.updateActiveSessions()
		return
	}

	if sess.state == StateEmpty {
		sess.state = StatePartial
	}

	preList, fountainEntry, isFountain := d.classify(sess)
	if isFountain {
		sess.symbols = append(sess.symbols, codec.Symbol{ESI: uint32(p.Header.ChunkIdx), Data: p.Payload})
	} else {
		existing, ok := sess.chunks[p.Header.ChunkIdx]
		if !ok || quality > existing.quality {
			sess.chunks[p.Header.ChunkIdx] = chunkCandidate{data: p.Payload, quality: quality}
		}
	}
	if d.metrics != nil {
		d.metrics.ObserveChunkQuality(float64(quality))
	}

	d.checkCompletion(sess, key, preList, fountainEntry, isFountain, now)
	d.updateActiveSessions()
}

// classify inspects the session's merged header to decide whether its
// pre-boundary stack is fountain-coded, returning the pre-boundary
// list and, if present, the fountain entry within it. Until a header
// reveals content_encodings, chunks are assumed to be block-coded.
func (d *Deframer) classify(sess *Session) (pre encoding.List, fountainEntry encoding.Entry, isFountain bool) {
	h := sess.merger.Header()
	if h.ContentEncodings == nil {
		return encoding.List{}, encoding.Entry{}, false
	}
	list, err := encoding.Parse(*h.ContentEncodings)
	if err != nil {
		return encoding.List{}, encoding.Entry{}, false
	}
	pre, _, hasBoundary, err := list.SplitAtBoundary()
	if err != nil {
		return encoding.List{}, encoding.Entry{}, false
	}
	searchList := pre
	if !hasBoundary {
		searchList = list
	}
	for i, e := range searchList.Entries {
		if d.registry.IsFountain(e.Tag) {
			// the fountain decode yields the output of the codecs listed
			// before it, so only those are left to reverse
			return encoding.List{Entries: searchList.Entries[:i]}, e, true
		}
	}
	return pre, encoding.Entry{}, false
}

func (d *Deframer) checkCompletion(sess *Session, key SessionKey, pre encoding.List, fountainEntry encoding.Entry, isFountain bool, now time.Time) {
	if isFountain {
		d.checkFountainCompletion(sess, key, pre, fountainEntry, now)
		return
	}
	h := sess.merger.Header()
	if h.ChunkCount == 0 || uint64(len(sess.chunks)) < h.ChunkCount {
		return
	}
	content := make([]byte, 0)
	for i := uint64(0); i < h.ChunkCount; i++ {
		c, ok := sess.chunks[i]
		if !ok {
			return
		}
		content = append(content, c.data...)
	}
	d.complete(sess, key, pre, content, sumQuality(sess.chunks), now)
}

func (d *Deframer) checkFountainCompletion(sess *Session, key SessionKey, pre encoding.List, fountainEntry encoding.Entry, now time.Time) {
	if len(fountainEntry.Params) == 0 {
		return
	}
	params, err := resolvedParams(fountainEntry)
	if err != nil {
		return
	}
	fountain, err := d.registry.BuildFountain(fountainEntry.Tag, params)
	if err != nil {
		return
	}
	content, quality, ok := fountain.TryDecode(sess.symbols)
	if !ok {
		return
	}
	d.complete(sess, key, pre, content, quality, now)
}

func resolvedParams(e encoding.Entry) ([]uint64, error) {
	out := make([]uint64, len(e.Params))
	for i, p := range e.Params {
		if p.IsDlen {
			return nil, fmt.Errorf("deframer: fountain entry %s still carries an unresolved dlen", e.Tag)
		}
		out[i] = p.Value
	}
	return out, nil
}

// complete reverses the pre-boundary stack over the reassembled
// content, truncates to data_len to discard any trailing padding a
// shortened FEC block introduced, and emits MessageReceived. Failure
// to reverse the pre-boundary stack never aborts other sessions: it
// surfaces as a SessionTimedOut-shaped failure event instead. Once a
// session completes successfully, its key is recorded in d.completed so
// a redelivered chunk or duplicate fountain symbol for the same message
// is silently dropped rather than re-creating the session and emitting
// a second MessageReceived.
func (d *Deframer) complete(sess *Session, key SessionKey, pre encoding.List, content []byte, quality codec.Quality, now time.Time) {
	h := sess.merger.Header()
	if h.DataLen > 0 && uint64(len(content)) > h.DataLen {
		content = content[:h.DataLen]
	}

	preCodecs, err := pre.BuildCodecs(d.registry)
	if err != nil {
		d.failSession(sess, key)
		return
	}
	message, preQuality, err := encoding.DecodeAll(preCodecs, content)
	if err != nil {
		d.failSession(sess, key)
		return
	}

	d.pushEvent(Event{
		Kind:    EventMessageReceived,
		Key:     key,
		Header:  h,
		Payload: message,
		Quality: quality + preQuality,
	})
	if d.metrics != nil {
		d.metrics.RecordSessionCompleted()
	}
	delete(d.sessions, key)
	d.completed[key] = now
}

func (d *Deframer) failSession(sess *Session, key SessionKey) {
	d.pushEvent(Event{
		Kind:            EventSessionTimedOut,
		Key:             key,
		Header:          sess.merger.Header(),
		CollectedChunks: sess.collectedCount(),
	})
	if d.metrics != nil {
		d.metrics.RecordSessionTimedOut()
	}
	delete(d.sessions, key)
}

// Tick evicts sessions that have sat idle past the configured session
// timeout, emitting SessionTimedOut for each, and prunes completed-
// session keys older than the same timeout so the redelivery-suppression
// set does not grow without bound. It does not block and performs no
// I/O; callers drive it from their own event loop.
func (d *Deframer) Tick(now time.Time) {
	if d.cfg.SessionTimeout <= 0 {
		return
	}
	for key, sess := range d.sessions {
		if now.Sub(sess.LastSeen) < d.cfg.SessionTimeout {
			continue
		}
		d.pushEvent(Event{
			Kind:            EventSessionTimedOut,
			Key:             key,
			Header:          sess.merger.Header(),
			CollectedChunks: sess.collectedCount(),
		})
		if d.metrics != nil {
			d.metrics.RecordSessionTimedOut()
		}
		delete(d.sessions, key)
	}
	for key, at := range d.completed {
		if now.Sub(at) >= d.cfg.SessionTimeout {
			delete(d.completed, key)
		}
	}
	d.updateActiveSessions()
}

// Drain times out every still-open session, regardless of how recently
// it was touched, and clears the completed-session set since no further
// redeliveries will arrive once the caller shuts down. Transport
// adapters call this on shutdown so nothing is silently dropped.
func (d *Deframer) Drain() {
	for key, sess := range d.sessions {
		d.pushEvent(Event{
			Kind:            EventSessionTimedOut,
			Key:             key,
			Header:          sess.merger.Header(),
			CollectedChunks: sess.collectedCount(),
		})
		if d.metrics != nil {
			d.metrics.RecordSessionTimedOut()
		}
		delete(d.sessions, key)
	}
	for key := range d.completed {
		delete(d.completed, key)
	}
	d.updateActiveSessions()
}

// NextEvent pops the oldest pending event, if any.
func (d *Deframer) NextEvent() (Event, bool) {
	return d.events.PopFront(eventsKey)
}

func (d *Deframer) pushEvent(e Event) {
	_, _ = d.events.Push(eventsKey, e)
}

func (d *Deframer) recordIngested(outcome string) {
	if d.metrics != nil {
		d.metrics.RecordIngested(outcome)
	}
}

func (d *Deframer) updateActiveSessions() {
	if d.metrics != nil {
		d.metrics.SetActiveSessions(float64(len(d.sessions)))
	}
}

func (d *Deframer) getOrCreateSession(key SessionKey, now time.Time) *Session {
	if sess, ok := d.sessions[key]; ok {
		return sess
	}
	sess := newSession(key, now)
	d.sessions[key] = sess
	return sess
}

func sumQuality(chunks map[uint64]chunkCandidate) codec.Quality {
	var total codec.Quality
	for _, c := range chunks {
		total += c.quality
	}
	return total
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func sessionKeyOf(h header.Header) SessionKey {
	return SessionKey{SrcCallsign: derefOr(h.SrcCallsign, ""), MsgID: h.MsgID}
}
