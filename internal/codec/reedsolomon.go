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

import "fmt"

// reedSolomonCodec implements classical GF(256) Reed-Solomon block FEC,
// correcting errors at unknown locations (not just erasures) per §4.1.
// n is the codeword length, k the dataword length; it corrects up to
// floor((n-k)/2) byte errors per n-byte block.
type reedSolomonCodec struct {
	n, k int
	gen  gfPoly
}

func newReedSolomonCodec(params []uint64) (Codec, error) {
	if len(params) != 2 {
		return nil, ErrWrongParamCount
	}
	n, k := int(params[0]), int(params[1])
	if n <= k || k < 1 || n > 255 {
		return nil, fmt.Errorf("%w: rs(%d,%d) invalid", ErrWrongParamCount, n, k)
	}
	return &reedSolomonCodec{n: n, k: k, gen: rsGeneratorPoly(n - k)}, nil
}

func (c *reedSolomonCodec) Tag() string { return TagReedSolomon }

// maxCorrectable is the per-block error-correction budget.
func (c *reedSolomonCodec) maxCorrectable() int {
	return (c.n - c.k) / 2
}

// encodeBlock treats data as the high-degree coefficients of the
// codeword and appends the remainder of data(x)*x^nsym divided by the
// generator polynomial as the low-degree parity coefficients.
func (c *reedSolomonCodec) encodeBlock(data []byte) []byte {
	nsym := c.n - c.k
	msg := make(gfPoly, len(data)+nsym)
	copy(msg, data)

	remainder := append(gfPoly{}, msg...)
	for i := 0; i < len(data); i++ {
		coef := remainder[i]
		if coef == 0 {
			continue
		}
		for j, gc := range c.gen {
			remainder[i+j] ^= field.mul(gc, coef)
		}
	}

	codeword := make([]byte, c.n)
	copy(codeword, data)
	copy(codeword[len(data):], remainder[len(data):])
	return codeword
}

func (c *reedSolomonCodec) Encode(input []byte) ([]byte, error) {
	padded := input
	if rem := len(padded) % c.k; rem != 0 {
		padded = append(append([]byte{}, padded...), make([]byte, c.k-rem)...)
	}
	out := make([]byte, 0, (len(padded)/c.k)*c.n)
	for i := 0; i < len(padded); i += c.k {
		out = append(out, c.encodeBlock(padded[i:i+c.k])...)
	}
	return out, nil
}

// syndromes returns S_0..S_{nsym-1} for a received codeword block,
// ascending (S[0] is the constant term of S(x)). received is in
// codeword order: received[0] is the highest-degree coefficient.
func (c *reedSolomonCodec) syndromes(received []byte) []byte {
	nsym := c.n - c.k
	s := make([]byte, nsym)
	for j := 0; j < nsym; j++ {
		s[j] = polyEval(gfPoly(received), field.pow(2, j))
	}
	return s
}

// berlekampMassey returns the error locator polynomial, ascending
// (lambda[0] == 1), and its degree (the number of errors it locates).
func berlekampMassey(syn []byte) (lambda []byte, numErrors int) {
	c := []byte{1}
	b := []byte{1}
	l := 0
	m := 1
	var bCoef byte = 1

	ensureLen := func(p []byte, n int) []byte {
		for len(p) < n {
			p = append(p, 0)
		}
		return p
	}

	for n := 0; n < len(syn); n++ {
		delta := syn[n]
		for i := 1; i <= l; i++ {
			delta ^= field.mul(c[i], syn[n-i])
		}
		switch {
		case delta == 0:
			m++
		case 2*l <= n:
			t := append([]byte{}, c...)
			coef := field.div(delta, bCoef)
			c = ensureLen(c, len(b)+m)
			for i := 0; i < len(b); i++ {
				c[i+m] ^= field.mul(coef, b[i])
			}
			l = n + 1 - l
			b = t
			bCoef = delta
			m = 1
		default:
			coef := field.div(delta, bCoef)
			c = ensureLen(c, len(b)+m)
			for i := 0; i < len(b); i++ {
				c[i+m] ^= field.mul(coef, b[i])
			}
			m++
		}
	}
	return c, l
}

func polyEvalAscending(p []byte, x byte) byte {
	var y byte
	for i := len(p) - 1; i >= 0; i-- {
		y = field.mul(y, x) ^ p[i]
	}
	return y
}

// decodeBlock corrects up to maxCorrectable errors in a received
// n-byte block and returns the k-byte dataword plus remaining
// correction budget as quality.
func (c *reedSolomonCodec) decodeBlock(received []byte) ([]byte, Quality, error) {
	if len(received) != c.n {
		return nil, 0, ErrCorrupt
	}
	syn := c.syndromes(received)
	clean := true
	for _, s := range syn {
		if s != 0 {
			clean = false
			break
		}
	}
	if clean {
		return append([]byte{}, received[:c.k]...), Quality(c.maxCorrectable()), nil
	}

	lambda, numErrors := berlekampMassey(syn)
	if numErrors <= 0 || numErrors > c.maxCorrectable() {
		return nil, 0, ErrCorrupt
	}

	// Chien search: error at codeword array index pos (0 = highest
	// degree, n-1 = lowest) corresponds to field element alpha^(n-1-pos);
	// it is a root of the locator evaluated at its inverse.
	var errDegrees []int
	for d := 0; d < c.n; d++ {
		xInv := field.inv(field.pow(2, d))
		if polyEvalAscending(lambda, xInv) == 0 {
			errDegrees = append(errDegrees, d)
		}
	}
	if len(errDegrees) != numErrors {
		return nil, 0, ErrCorrupt
	}

	// Forney: error evaluator Omega(x) = S(x)*Lambda(x) mod x^nsym,
	// formal derivative Lambda'(x) keeps only odd-degree terms (char 2).
	nsym := c.n - c.k
	product := polyMul(gfPoly(syn), gfPoly(lambda))
	omega := product
	if len(omega) > nsym {
		omega = omega[:nsym]
	}
	var lambdaPrime []byte
	for i := 1; i < len(lambda); i += 2 {
		lambdaPrime = append(lambdaPrime, lambda[i])
	}
	// lambdaPrime holds only the odd-degree coefficients of lambda, so
	// evaluating it in x^2 gives the formal derivative's value at x.

	corrected := append([]byte{}, received...)
	for _, d := range errDegrees {
		pos := c.n - 1 - d
		x := field.pow(2, d)
		xInv := field.inv(x)

		num := field.mul(x, polyEvalAscending(omega, xInv))
		den := polyEvalAscending(lambdaPrime, field.mul(xInv, xInv))
		if den == 0 {
			return nil, 0, ErrCorrupt
		}
		corrected[pos] ^= field.div(num, den)
	}

	if s2 := c.syndromes(corrected); !allZero(s2) {
		return nil, 0, ErrCorrupt
	}

	return corrected[:c.k], Quality(c.maxCorrectable() - numErrors), nil
}

func allZero(p []byte) bool {
	for _, v := range p {
		if v != 0 {
			return false
		}
	}
	return true
}

func (c *reedSolomonCodec) Decode(input []byte) ([]byte, Quality, error) {
	if len(input)%c.n != 0 || len(input) == 0 {
		return nil, 0, ErrCorrupt
	}
	var out []byte
	var total Quality
	for i := 0; i < len(input); i += c.n {
		block, q, err := c.decodeBlock(input[i : i+c.n])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, block...)
		total += q
	}
	return out, total, nil
}
