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

// gf256 implements GF(2^8) arithmetic over the primitive polynomial
// x^8 + x^4 + x^3 + x^2 + 1 (0x11d), the field used by QR-code and
// CCSDS Reed-Solomon codes. Tables are built once at package init.
type gf256 struct {
	expTable [512]byte
	logTable [256]byte
}

const gf256Poly = 0x11d

func newGF256() *gf256 {
	f := &gf256{}
	x := 1
	for i := 0; i < 255; i++ {
		f.expTable[i] = byte(x)
		f.logTable[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= gf256Poly
		}
	}
	for i := 255; i < 512; i++ {
		f.expTable[i] = f.expTable[i-255]
	}
	return f
}

var field = newGF256() //nolint:gochecknoglobals

func (f *gf256) mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return f.expTable[int(f.logTable[a])+int(f.logTable[b])]
}

func (f *gf256) div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return f.expTable[(int(f.logTable[a])-int(f.logTable[b])+255)%255]
}

func (f *gf256) pow(a byte, n int) byte {
	if a == 0 {
		return 0
	}
	return f.expTable[(int(f.logTable[a])*n)%255+255]
}

func (f *gf256) inv(a byte) byte {
	return f.expTable[255-int(f.logTable[a])]
}

// gfPoly is a polynomial over GF(256), coefficients ordered from the
// highest degree term first, matching how generator and syndrome
// polynomials are conventionally written.
type gfPoly []byte

func polyMul(a, b gfPoly) gfPoly {
	out := make(gfPoly, len(a)+len(b)-1)
	for i, ac := range a {
		if ac == 0 {
			continue
		}
		for j, bc := range b {
			out[i+j] ^= field.mul(ac, bc)
		}
	}
	return out
}

func polyEval(p gfPoly, x byte) byte {
	var y byte
	for _, c := range p {
		y = field.mul(y, x) ^ c
	}
	return y
}

// rsGeneratorPoly returns the generator polynomial for nsym parity
// symbols: product_{i=0}^{nsym-1} (x - alpha^i).
func rsGeneratorPoly(nsym int) gfPoly {
	g := gfPoly{1}
	for i := 0; i < nsym; i++ {
		g = polyMul(g, gfPoly{1, field.pow(2, i)})
	}
	return g
}
