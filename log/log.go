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

package log

// KV is a set of structured fields attached to a log line.
type KV = map[string]any

// Log is the interface the core writes diagnostics through. It never
// blocks and never returns an error: logging failures are the host's
// problem, not the engine's.
type Log interface {
	Debug(event string, kv KV)
	Info(event string, kv KV)
	Warn(event string, kv KV)
	Error(event string, kv KV)
}

// Nil discards everything. It is the default when no Log is registered.
type Nil struct{}

func (Nil) Debug(string, KV) {}
func (Nil) Info(string, KV)  {}
func (Nil) Warn(string, KV)  {}
func (Nil) Error(string, KV) {}
