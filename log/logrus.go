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

import "github.com/sirupsen/logrus"

// Logrus adapts a *logrus.Logger (or the package-level standard
// logger) to the Log interface.
type Logrus struct {
	Entry *logrus.Logger
}

func NewLogrus(l *logrus.Logger) *Logrus {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Logrus{Entry: l}
}

func (l *Logrus) fields(kv KV) logrus.Fields {
	if len(kv) == 0 {
		return nil
	}
	return logrus.Fields(kv)
}

func (l *Logrus) Debug(event string, kv KV) {
	l.Entry.WithFields(l.fields(kv)).Debug(event)
}

func (l *Logrus) Info(event string, kv KV) {
	l.Entry.WithFields(l.fields(kv)).Info(event)
}

func (l *Logrus) Warn(event string, kv KV) {
	l.Entry.WithFields(l.fields(kv)).Warn(event)
}

func (l *Logrus) Error(event string, kv KV) {
	l.Entry.WithFields(l.fields(kv)).Error(event)
}
