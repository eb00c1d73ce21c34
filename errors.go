// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package pks

import (
	"errors"
	"fmt"
)

var (
	// ErrNoKeyStoreSupport is returned from InitializeKeyStore and indicates
	// that the firmware does not provide the Platform KeyStore client
	// interface services, so the keys built into the boot chain govern
	// verification.
	ErrNoKeyStoreSupport = errors.New("the firmware does not have Platform KeyStore support")
)

// InvalidSignatureListError is returned from DecodeSignatureDatabase or
// InitializeKeyStore if a signature database contains a signature list whose
// size fields are inconsistent with each other or with the enclosing buffer.
type InvalidSignatureListError struct {
	msg string
}

func (e InvalidSignatureListError) Error() string {
	return "invalid signature list: " + e.msg
}

// InvalidVersionObjectError is returned from InitializeKeyStore if the
// SB_VERSION object in the Platform KeyStore is not a single byte with the
// value 0 or 1. The object's observed contents are retained for diagnostics.
type InvalidVersionObjectError struct {
	Data []byte
}

func (e InvalidVersionObjectError) Error() string {
	return fmt.Sprintf("invalid SB_VERSION object [%x] in the Platform KeyStore (expected a single byte with the value 0 or 1)", e.Data)
}
