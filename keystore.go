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
)

// KeyStore contains the secure boot key databases loaded from the
// Platform KeyStore. It is populated once by InitializeKeyStore and must
// be treated as read-only afterwards.
type KeyStore struct {
	db            []*SignatureRecord
	dbx           []*SignatureRecord
	useStaticKeys bool
}

// Db returns the records of the db variable - the signatures that boot
// components are allowed to be verified against.
func (s *KeyStore) Db() []*SignatureRecord {
	return s.db
}

// Dbx returns the records of the dbx variable - the keys and digests that
// are explicitly revoked.
func (s *KeyStore) Dbx() []*SignatureRecord {
	return s.dbx
}

// UseStaticKeys indicates that the db variable was absent from the
// Platform KeyStore and that the keys built into the boot chain serve as
// the allowed list instead. The dbx records still apply.
func (s *KeyStore) UseStaticKeys() bool {
	return s.useStaticKeys
}

// The key store is process-wide state with a single writer. It is written
// during one InitializeKeyStore pass and read-only from then on, so no
// locking guards the fields themselves.
var (
	keyStore      KeyStore
	keyStoreInUse bool

	keyStoreOnce = new(sync.Once)
	keyStoreErr  error
)

// InitializeKeyStore determines whether the verification keys for this
// boot are managed in the Platform KeyStore and, if they are, loads the db
// and dbx secure boot variables into the key store returned by
// GetKeyStore.
//
// A nil return means the trust mode was determined cleanly - which may
// still be static key mode, if the firmware has no keystore support that
// was administratively enabled. A non-nil return reports why dynamic key
// management is not fully in effect: ErrNoKeyStoreSupport or a wrapped
// probe error if the keystore is unavailable, InvalidVersionObjectError if
// the version object is malformed, or a wrapped read or decode error if
// one of the variables could not be loaded. In the latter case the key
// store remains in use but empty, so that verification sees no usable
// dynamic keys rather than silently widening trust.
//
// The resolution runs once per process. Subsequent calls return the result
// of the first call without consulting the firmware again.
func InitializeKeyStore() error {
	keyStoreOnce.Do(func() {
		keyStoreErr = resolveKeyStore(keyStoreEnv)
	})
	return keyStoreErr
}

// GetKeyStore returns the key databases loaded from the Platform KeyStore,
// or nil if the keys built into the boot chain govern verification
// instead. Callers must not mutate the returned store.
func GetKeyStore() *KeyStore {
	if !keyStoreInUse {
		return nil
	}
	return &keyStore
}

// DiscardKeyStore drops the contents of the key store once the consumer
// has finished with them. The trust mode decision is preserved: if the
// databases were loaded from the Platform KeyStore then GetKeyStore still
// returns the store, now empty, afterwards. It is safe to call any number
// of times, including on a key store that was never populated.
func DiscardKeyStore() {
	keyStore = KeyStore{}
}
