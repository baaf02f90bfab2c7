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

package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/loic-fejoz/hqfbp-go/internal/kiss"
)

// DialSend dials addr over TCP, writes every PDU KISS-framed in order,
// and closes the connection once everything has been sent.
func DialSend(addr string, pdus [][]byte, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	defer conn.Close()

	for _, p := range pdus {
		if _, err := conn.Write(kiss.Encode(p)); err != nil {
			return fmt.Errorf("transport: send to %s: %w", addr, err)
		}
	}
	return nil
}

// PDUHandler is called once per unframed PDU a Server decodes off an
// accepted connection.
type PDUHandler func(pdu []byte, now time.Time)

// Server accepts TCP connections and feeds every unframed PDU each
// connection yields to a PDUHandler, typically a Deframer's ReceiveBytes
// wrapped with logging.
type Server struct {
	listener net.Listener
	handle   PDUHandler
}

// Listen binds addr and returns a Server ready for Serve. It does not
// block.
func Listen(addr string, handle PDUHandler) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	return &Server{listener: l, handle: handle}, nil
}

// Addr reports the address Listen bound, useful when port 0 was
// requested.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until the listener is closed, decoding each
// one's byte stream in its own goroutine. It returns once Close stops
// the listener.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	dec := kiss.NewDecoder()
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			for _, p := range dec.Feed(buf[:n]) {
				s.handle(p, time.Now())
			}
		}
		if err != nil {
			return
		}
	}
}

// Close stops accepting new connections. Connections already in flight
// run to completion.
func (s *Server) Close() error {
	return s.listener.Close()
}
