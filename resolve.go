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

	"github.com/snapcore/snapd/logger"
	"golang.org/x/xerrors"

	"github.com/canonical/go-pkslib/internal/ieee1275"
)

// keyStoreEnv provides the firmware services consumed when resolving the
// key store. It can be overridden for testing.
var keyStoreEnv ieee1275.Environment = ieee1275.DefaultEnv

// varLoadStatus describes the outcome of a loadSecureBootVar call that did
// not return an error.
type varLoadStatus int

const (
	// varLoaded indicates that the variable existed and its records were
	// appended to the accumulation target.
	varLoaded varLoadStatus = iota + 1

	// varNotFound indicates that the variable does not exist in the
	// Platform KeyStore.
	varNotFound

	// varEmpty indicates that the variable exists but contains no data.
	// For trust mode resolution this is equivalent to varNotFound.
	varEmpty
)

// loadSecureBootVar reads the secure boot variable with the supplied
// selector from the Platform KeyStore and decodes the signature lists it
// contains, appending the records to db. Records decoded before a failure
// remain in db so that the caller can release them. A missing or empty
// variable is reported as a distinguished status rather than an error.
func loadSecureBootVar(env ieee1275.Environment, flags, vartype uint8, maxSize uint32, db *[]*SignatureRecord) (varLoadStatus, error) {
	data, err := env.ReadSecureBootVar(flags, vartype, maxSize)
	switch {
	case errors.Is(err, ieee1275.ErrObjectNotFound):
		return varNotFound, nil
	case err != nil:
		return 0, xerrors.Errorf("cannot read the variable: %w", err)
	case len(data) == 0:
		return varEmpty, nil
	}

	if err := decodeSignatureDatabase(data, db); err != nil {
		return 0, err
	}
	return varLoaded, nil
}

// readSecureBootVersion reads the SB_VERSION object, with which the
// firmware selects between keys managed in the Platform KeyStore (1) and
// keys built into the boot chain (0).
func readSecureBootVersion(env ieee1275.Environment, maxSize uint32) (uint8, error) {
	data, _, err := env.ReadObject(ieee1275.ConsumerFirmware, ieee1275.SBVersionLabel, maxSize)
	if err != nil {
		return 0, xerrors.Errorf("cannot read the SB_VERSION object from the Platform KeyStore: %w", err)
	}
	if len(data) != 1 || data[0] > 1 {
		return 0, InvalidVersionObjectError{Data: data}
	}
	return data[0], nil
}

// resolveKeyStore determines the trust mode for this boot and populates
// the key store when the Platform KeyStore is in use. The store is marked
// in use before the databases are loaded, so a load failure leaves an
// empty key store that is still in use.
func resolveKeyStore(env ieee1275.Environment) error {
	logger.Debugf("attempting to load the Platform KeyStore")

	if err := env.Test(ieee1275.PropPKSMaxObjectSize); err != nil {
		logger.Noticef("switching to static keys: %v", err)
		return ErrNoKeyStoreSupport
	}

	maxSize, err := env.MaxObjectSize()
	if err != nil {
		logger.Noticef("switching to static keys: cannot obtain the maximum object size: %v", err)
		return xerrors.Errorf("cannot obtain the maximum object size of the Platform KeyStore: %w", err)
	}

	version, err := readSecureBootVersion(env, maxSize)
	if err != nil {
		logger.Noticef("switching to static keys: %v", err)
		return err
	}
	if version == 0 {
		logger.Debugf("dynamic key management is disabled, using static keys")
		return nil
	}

	keyStoreInUse = true
	keyStore = KeyStore{}

	status, err := loadSecureBootVar(env, 0, ieee1275.SBVarDB, maxSize, &keyStore.db)
	if err != nil {
		DiscardKeyStore()
		return xerrors.Errorf("cannot load db from the Platform KeyStore: %w", err)
	}
	if status != varLoaded {
		// db is not created by default. The keys built into the boot
		// chain serve as the allowed list until one is enrolled.
		logger.Debugf("db is not present in the Platform KeyStore, falling back to static keys for the allowed list")
		keyStore.useStaticKeys = true
	}

	status, err = loadSecureBootVar(env, 0, ieee1275.SBVarDBX, maxSize, &keyStore.dbx)
	if err != nil {
		DiscardKeyStore()
		return xerrors.Errorf("cannot load dbx from the Platform KeyStore: %w", err)
	}
	if status != varLoaded {
		logger.Debugf("dbx is not present in the Platform KeyStore")
	}

	logger.Debugf("loaded the Platform KeyStore with %d db and %d dbx records", len(keyStore.db), len(keyStore.dbx))
	return nil
}
