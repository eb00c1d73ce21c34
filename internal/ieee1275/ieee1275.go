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

// Package ieee1275 abstracts out the IEEE 1275 client interface services
// that expose the Platform KeyStore on POWER LPARs, so that consumers of
// the API can provide ways to mock them for testing.
package ieee1275

import (
	"errors"
)

const (
	// ConsumerFirmware selects the firmware consumer partition of the
	// Platform KeyStore when reading an object.
	ConsumerFirmware uint8 = 1

	// SBVersionLabel is the label of the keystore object that selects
	// between keystore-managed and built-in secure boot keys.
	SBVersionLabel = "SB_VERSION"

	// PropPKSMaxObjectSize is the name of the client interface service
	// whose presence indicates Platform KeyStore support.
	PropPKSMaxObjectSize = "pks-max-object-size"
)

// Secure boot variable selectors for Environment.ReadSecureBootVar.
const (
	// SBVarDB selects the signature database of allowed keys.
	SBVarDB uint8 = 1

	// SBVarDBX selects the signature database of revoked keys and
	// binary hashes.
	SBVarDBX uint8 = 2
)

var (
	// ErrObjectNotFound is returned from Environment.ReadObject and
	// Environment.ReadSecureBootVar if the requested object does not
	// exist in the Platform KeyStore.
	ErrObjectNotFound = errors.New("object not found in the Platform KeyStore")
)

// Environment is an interface that abstracts out the client interface
// services backing the Platform KeyStore, so that consumers of the API
// can provide ways to mock them.
type Environment interface {
	// Test returns no error if the client interface service with the
	// supplied name is available.
	Test(name string) error

	// MaxObjectSize returns the size of the largest object that the
	// Platform KeyStore can hold, which bounds the buffer supplied to
	// the read services.
	MaxObjectSize() (uint32, error)

	// ReadObject returns the data and policies of the keystore object
	// with the supplied consumer and label. The firmware will not
	// return more than bufSize bytes. If no object exists with the
	// supplied consumer and label, the error is ErrObjectNotFound.
	ReadObject(consumer uint8, label string, bufSize uint32) (data []byte, policies uint32, err error)

	// ReadSecureBootVar returns the contents of the secure boot
	// variable with the supplied selector, which is a sequence of zero
	// or more EFI signature lists. The firmware will not return more
	// than bufSize bytes. If the variable does not exist, the error is
	// ErrObjectNotFound.
	ReadSecureBootVar(flags, vartype uint8, bufSize uint32) ([]byte, error)
}
