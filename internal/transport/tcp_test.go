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

package transport_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/config"
	"github.com/loic-fejoz/hqfbp-go/internal/generator"
	"github.com/loic-fejoz/hqfbp-go/internal/testutils/retry"
	"github.com/loic-fejoz/hqfbp-go/internal/transport"
	"github.com/stretchr/testify/require"
)

func TestServerReceivesPDUsOverTCP(t *testing.T) {
	t.Parallel()
	registry := codec.NewDefaultRegistry()
	g := generator.New(registry, config.Generator{MaxPayloadSize: 32})

	message := []byte("a message carried over a TCP socket")
	pdus, err := g.Generate(message, generator.Options{
		ContentEncodings: "h,chunk(32),crc32",
	})
	require.NoError(t, err)

	var mu sync.Mutex
	var received [][]byte
	srv, err := transport.Listen("127.0.0.1:0", func(pdu []byte, _ time.Time) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, pdu)
	})
	require.NoError(t, err)
	defer srv.Close()
	go srv.Serve()

	require.NoError(t, transport.DialSend(srv.Addr().String(), pdus, time.Second))

	// the server handles the connection asynchronously; poll briefly
	// rather than assuming delivery completes before the next line runs.
	retry.Retry(t, 20, 10*time.Millisecond, func(r *retry.R) {
		mu.Lock()
		defer mu.Unlock()
		if len(received) != len(pdus) {
			r.Fail()
		}
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, len(pdus))
	for i := range pdus {
		require.True(t, bytes.Equal(pdus[i], received[i]))
	}
}
