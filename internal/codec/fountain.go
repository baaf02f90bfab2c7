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

package codec

import (
	"fmt"
	"math"
	"math/rand"
)

// fountainCodec is a shared LT-style rateless engine backing both the
// "rq" and "lt" tags: source content is split into k symbols of a
// fixed size; ESIs below k are systematic (carry a source symbol
// verbatim); ESIs at or above k are repair symbols, each the XOR of a
// pseudorandom subset of source symbols chosen deterministically from
// the ESI and the codec's own parameters, so encoder and decoder agree on neighbors without
// exchanging them. Decoding peels first: repeatedly resolve any
// equation with exactly one unknown neighbor and substitute it into
// the rest. Whatever peeling leaves unresolved falls back to Gaussian
// elimination over GF(2) across the remaining equations, so a loss
// pattern that peeling alone can't untangle still decodes as long as
// the surviving symbols carry enough independent information.
//
// This mirrors the seeded-PRNG-per-symbol, XOR-combination shape of a
// typical Go LT-fountain implementation; it does not implement
// RFC 6330 RaptorQ (no pre-coding matrix, no systematic-index
// permutation), so "rq" here names a fountain code in that family
// rather than a wire-compatible RaptorQ decoder.
type fountainCodec struct {
	tag     string
	dlen    int
	symSize int
	k       int
	robust  bool // robust-soliton-ish degree distribution vs. ideal soliton
}

func newRaptorQCodec(params []uint64) (Fountain, error) {
	return newFountainCodec(TagRaptorQ, params, true)
}

func newLTCodec(params []uint64) (Fountain, error) {
	return newFountainCodec(TagLT, params, false)
}

func newFountainCodec(tag string, params []uint64, robust bool) (Fountain, error) {
	if len(params) != 3 {
		return nil, ErrWrongParamCount
	}
	dlen, symSize, k := int(params[0]), int(params[1]), int(params[2])
	if symSize < 1 || k < 1 {
		return nil, fmt.Errorf("%w: %s fountain needs symSize>=1 and k>=1", ErrWrongParamCount, tag)
	}
	return &fountainCodec{tag: tag, dlen: dlen, symSize: symSize, k: k, robust: robust}, nil
}

func (c *fountainCodec) Tag() string { return c.tag }

// sourceSymbols splits content into exactly k symSize-byte symbols,
// zero-padding the final one.
func (c *fountainCodec) sourceSymbols(content []byte) [][]byte {
	out := make([][]byte, c.k)
	for i := 0; i < c.k; i++ {
		start := i * c.symSize
		sym := make([]byte, c.symSize)
		if start < len(content) {
			end := start + c.symSize
			if end > len(content) {
				end = len(content)
			}
			copy(sym, content[start:end])
		}
		out[i] = sym
	}
	return out
}

// degree samples this codec's degree distribution using rng, clamped
// to [1, k]. The ideal soliton distribution gives P(1)=1/k and
// P(i)=1/(i*(i-1)) for i>1; the robust variant adds a spike around
// sqrt(k) so repair symbols more often touch a small ripple, reducing
// the number of symbols needed before peeling can start.
func (c *fountainCodec) degree(rng *rand.Rand) int {
	k := c.k
	if k <= 1 {
		return 1
	}
	if c.robust {
		spike := int(math.Sqrt(float64(k)))
		if spike < 1 {
			spike = 1
		}
		if spike > k {
			spike = k
		}
		if rng.Float64() < 0.3 {
			return spike
		}
	}
	u := rng.Float64()
	threshold := 1.0 / float64(k)
	if u <= threshold {
		return 1
	}
	for i := 2; i <= k; i++ {
		threshold += 1.0 / (float64(i) * float64(i-1))
		if u <= threshold {
			return i
		}
	}
	return k
}

// neighbors deterministically derives the set of source-symbol
// indices a repair symbol at esi XORs together, seeded only by esi and
// the codec's own parameters so encode and decode agree independently.
func (c *fountainCodec) neighbors(esi uint32) []int {
	seed := int64(esi)*2654435761 + int64(c.k) + int64(c.symSize)
	rng := rand.New(rand.NewSource(seed))
	d := c.degree(rng)
	perm := rng.Perm(c.k)
	return append([]int{}, perm[:d]...)
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func (c *fountainCodec) GenerateSymbols(content []byte, count int) ([]Symbol, error) {
	if count < c.k {
		return nil, fmt.Errorf("%w: %s needs at least k=%d symbols, got %d", ErrWrongParamCount, c.tag, c.k, count)
	}
	src := c.sourceSymbols(content)
	symbols := make([]Symbol, 0, count)
	for esi := 0; esi < count; esi++ {
		if esi < c.k {
			symbols = append(symbols, Symbol{ESI: uint32(esi), Data: append([]byte{}, src[esi]...)})
			continue
		}
		combined := make([]byte, c.symSize)
		for _, idx := range c.neighbors(uint32(esi)) {
			xorInto(combined, src[idx])
		}
		symbols = append(symbols, Symbol{ESI: uint32(esi), Data: combined})
	}
	return symbols, nil
}

// peelEquation is one repair symbol's not-yet-resolved dependency set.
type peelEquation struct {
	unresolved map[int]struct{}
	value      []byte
}

func (c *fountainCodec) TryDecode(symbols []Symbol) ([]byte, Quality, bool) {
	resolved := make(map[int][]byte, c.k)
	var equations []*peelEquation
	seen := make(map[uint32]struct{}, len(symbols))

	for _, sym := range symbols {
		if _, dup := seen[sym.ESI]; dup {
			continue
		}
		seen[sym.ESI] = struct{}{}

		if int(sym.ESI) < c.k {
			resolved[int(sym.ESI)] = sym.Data
			continue
		}
		unresolved := make(map[int]struct{})
		for _, idx := range c.neighbors(sym.ESI) {
			unresolved[idx] = struct{}{}
		}
		equations = append(equations, &peelEquation{unresolved: unresolved, value: append([]byte{}, sym.Data...)})
	}

	peel(equations, resolved)
	if len(resolved) < c.k {
		eliminate(equations, resolved, c.k)
	}

	if len(resolved) < c.k {
		return nil, 0, false
	}
	content := make([]byte, 0, c.k*c.symSize)
	for i := 0; i < c.k; i++ {
		content = append(content, resolved[i]...)
	}
	if c.dlen > 0 && c.dlen < len(content) {
		content = content[:c.dlen]
	}
	return content, Quality(len(symbols) - c.k), true
}

// peel repeatedly substitutes already-resolved symbols into eqs and
// resolves any equation left with exactly one unknown neighbor,
// mutating resolved in place until no further progress is possible.
func peel(eqs []*peelEquation, resolved map[int][]byte) {
	for progress := true; progress; {
		progress = false
		for _, eq := range eqs {
			for idx := range eq.unresolved {
				if val, ok := resolved[idx]; ok {
					xorInto(eq.value, val)
					delete(eq.unresolved, idx)
					progress = true
				}
			}
			if len(eq.unresolved) == 1 {
				var only int
				for idx := range eq.unresolved {
					only = idx
				}
				resolved[only] = append([]byte{}, eq.value...)
				delete(eq.unresolved, only)
				progress = true
			}
		}
	}
}

// eliminate runs Gaussian elimination over GF(2) on whatever equations
// peeling could not resolve alone: two or more repair symbols can
// still jointly pin down every remaining unknown even though no single
// one does by itself. This is the inactivation-decoding fallback the
// RaptorQ family leans on once the peeling ripple stalls; without it a
// pure peeling decoder gives up on perfectly recoverable loss patterns.
func eliminate(eqs []*peelEquation, resolved map[int][]byte, k int) {
	var unknowns []int
	for i := 0; i < k; i++ {
		if _, ok := resolved[i]; !ok {
			unknowns = append(unknowns, i)
		}
	}
	if len(unknowns) == 0 {
		return
	}
	col := make(map[int]int, len(unknowns))
	for i, idx := range unknowns {
		col[idx] = i
	}

	pivots := make([]*peelEquation, len(unknowns))
	for _, eq := range eqs {
		row := eq
		for len(row.unresolved) > 0 {
			lead := -1
			for idx := range row.unresolved {
				if c, ok := col[idx]; ok && (lead == -1 || c < lead) {
					lead = c
				}
			}
			if lead == -1 {
				break // only resolved indices left over, nothing to pivot on
			}
			if pivots[lead] == nil {
				pivots[lead] = row
				break
			}
			row = combine(row, pivots[lead])
		}
	}

	var pivotRows []*peelEquation
	for _, p := range pivots {
		if p != nil {
			pivotRows = append(pivotRows, p)
		}
	}
	peel(pivotRows, resolved)
}

// combine XORs two equations together, canceling any unknown present
// in both and combining their values, without mutating either input.
func combine(a, b *peelEquation) *peelEquation {
	merged := make(map[int]struct{}, len(a.unresolved)+len(b.unresolved))
	for idx := range a.unresolved {
		merged[idx] = struct{}{}
	}
	for idx := range b.unresolved {
		if _, dup := merged[idx]; dup {
			delete(merged, idx)
		} else {
			merged[idx] = struct{}{}
		}
	}
	value := append([]byte{}, a.value...)
	xorInto(value, b.value)
	return &peelEquation{unresolved: merged, value: value}
}
