/*
 * DMPR multipath routing daemon. Copyright (C) 2021-present David Coles
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

// Package transport is the reference external collaborator for
// packet_tx/msg_rx: real UDP multicast sockets joined on a named
// local interface. The core never imports this package; a host binary
// wires it in as the RegisterTransmit callback and as the feeder of
// Engine.Receive.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"
)

const maxDatagram = 65507

// Multicast is one joined multicast group on one local interface.
type Multicast struct {
	iface *net.Interface
	group netip.Addr
	conn  *net.UDPConn
	pconn *ipv4.PacketConn
}

// NewMulticast opens a UDP socket bound to port, joins group on the
// named local interface, and returns a Multicast ready to Send and
// Listen.
func NewMulticast(ifaceName string, group netip.Addr, port int) (*Multicast, error) {
	if !group.Is4() {
		return nil, fmt.Errorf("transport: only IPv4 multicast groups are supported, got %s", group)
	}

	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("transport: interface %q: %w", ifaceName, err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: port})
	if err != nil {
		return nil, fmt.Errorf("transport: listen: %w", err)
	}

	pconn := ipv4.NewPacketConn(conn)
	groupAddr := &net.UDPAddr{IP: group.AsSlice()}
	if err := pconn.JoinGroup(iface, groupAddr); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: join group %s on %s: %w", group, ifaceName, err)
	}
	if err := pconn.SetMulticastInterface(iface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: set multicast interface: %w", err)
	}
	_ = pconn.SetMulticastLoopback(false)

	return &Multicast{iface: iface, group: group, conn: conn, pconn: pconn}, nil
}

// Send transmits payload to the joined multicast group on port.
func (m *Multicast) Send(payload []byte, port int) error {
	if len(payload) > maxDatagram {
		return fmt.Errorf("transport: payload too large (%d bytes)", len(payload))
	}
	dst := &net.UDPAddr{IP: m.group.AsSlice(), Port: port}
	_, err := m.conn.WriteToUDP(payload, dst)
	return err
}

// Listen reads datagrams until ctx is cancelled, invoking handle with
// each payload received. It blocks the calling goroutine.
func (m *Multicast) Listen(ctx context.Context, handle func(payload []byte)) error {
	buf := make([]byte, maxDatagram)
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		m.conn.Close()
		close(done)
	}()

	for {
		n, _, err := m.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-done:
				return nil
			default:
				return fmt.Errorf("transport: read: %w", err)
			}
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		handle(payload)
	}
}

// Close releases the underlying socket.
func (m *Multicast) Close() error {
	return m.conn.Close()
}
