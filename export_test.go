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
	"sync"

	"github.com/canonical/go-pkslib/internal/ieee1275"
)

// Export unexported functions for testing
var (
	DecodeSignatureList         = decodeSignatureList
	DecodeSignatureDatabaseInto = decodeSignatureDatabase
	LoadSecureBootVar           = loadSecureBootVar
	ResolveKeyStore             = resolveKeyStore
)

// Export the variable load outcomes for testing
const (
	VarLoaded   = varLoaded
	VarNotFound = varNotFound
	VarEmpty    = varEmpty
)

type VarLoadStatus = varLoadStatus

func MockKeyStoreEnv(env ieee1275.Environment) (restore func()) {
	orig := keyStoreEnv
	keyStoreEnv = env
	return func() {
		keyStoreEnv = orig
	}
}

// MockKeyStore resets the process-wide key store state so that a test can
// drive InitializeKeyStore from scratch, and returns a callback to restore
// the previous state.
func MockKeyStore() (restore func()) {
	origStore := keyStore
	origInUse := keyStoreInUse
	origOnce := keyStoreOnce
	origErr := keyStoreErr

	keyStore = KeyStore{}
	keyStoreInUse = false
	keyStoreOnce = new(sync.Once)
	keyStoreErr = nil

	return func() {
		keyStore = origStore
		keyStoreInUse = origInUse
		keyStoreOnce = origOnce
		keyStoreErr = origErr
	}
}

// KeyStoreInUse returns whether the key store is marked in use.
func KeyStoreInUse() bool {
	return keyStoreInUse
}

// SetKeyStoreContents replaces the contents of the process-wide key store,
// marking it in use.
func SetKeyStoreContents(db, dbx []*SignatureRecord, useStaticKeys bool) {
	keyStore = KeyStore{db: db, dbx: dbx, useStaticKeys: useStaticKeys}
	keyStoreInUse = true
}
