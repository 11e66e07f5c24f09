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

package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/nwmesh/dmpr"
)

// loadConfig reads a dmpr.Config from a TOML file. If the file has no
// id set, a fresh one is minted so the daemon can still start; callers
// that need a stable identity across restarts should persist the
// generated value back to the file.
func loadConfig(path string) (dmpr.Config, error) {
	var cfg dmpr.Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return dmpr.Config{}, fmt.Errorf("dmprd: reading %s: %w", path, err)
	}

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	return cfg, nil
}
