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

// Package pkstest provides a mock Platform KeyStore environment and
// signature database fixtures for testing.
package pkstest

import (
	"fmt"

	"github.com/canonical/go-pkslib/internal/ieee1275"
)

// ObjectKey identifies a mock keystore object by consumer and label.
type ObjectKey struct {
	Consumer uint8
	Label    string
}

// MockEnvironment is an ieee1275.Environment backed by in-memory state.
// The zero value describes firmware without Platform KeyStore support.
type MockEnvironment struct {
	// Services is the set of client interface services that Test
	// reports as available.
	Services map[string]bool

	// MaxSize is returned from MaxObjectSize when MaxSizeErr is nil.
	MaxSize    uint32
	MaxSizeErr error

	// Objects contains the keystore objects returned from ReadObject.
	Objects map[ObjectKey][]byte

	// Vars contains the secure boot variables returned from
	// ReadSecureBootVar, keyed by variable selector. An entry in
	// VarErrs takes precedence and fails the read with that error.
	Vars    map[uint8][]byte
	VarErrs map[uint8]error

	// VarReads counts the ReadSecureBootVar calls per selector.
	VarReads map[uint8]int
}

// NewMockEnvironment returns a MockEnvironment describing firmware with
// Platform KeyStore support and the supplied maximum object size.
func NewMockEnvironment(maxSize uint32) *MockEnvironment {
	return &MockEnvironment{
		Services: map[string]bool{ieee1275.PropPKSMaxObjectSize: true},
		MaxSize:  maxSize}
}

// AddObject adds a mock keystore object.
func (e *MockEnvironment) AddObject(consumer uint8, label string, data []byte) *MockEnvironment {
	if e.Objects == nil {
		e.Objects = make(map[ObjectKey][]byte)
	}
	e.Objects[ObjectKey{Consumer: consumer, Label: label}] = data
	return e
}

// SetSecureBootVersion adds a SB_VERSION object with the supplied value.
func (e *MockEnvironment) SetSecureBootVersion(version uint8) *MockEnvironment {
	return e.AddObject(ieee1275.ConsumerFirmware, ieee1275.SBVersionLabel, []byte{version})
}

// AddSecureBootVar adds a mock secure boot variable.
func (e *MockEnvironment) AddSecureBootVar(vartype uint8, data []byte) *MockEnvironment {
	if e.Vars == nil {
		e.Vars = make(map[uint8][]byte)
	}
	e.Vars[vartype] = data
	return e
}

// FailSecureBootVar makes reads of the supplied secure boot variable fail
// with the supplied error.
func (e *MockEnvironment) FailSecureBootVar(vartype uint8, err error) *MockEnvironment {
	if e.VarErrs == nil {
		e.VarErrs = make(map[uint8]error)
	}
	e.VarErrs[vartype] = err
	return e
}

// Test implements [ieee1275.Environment.Test].
func (e *MockEnvironment) Test(name string) error {
	if !e.Services[name] {
		return fmt.Errorf("%s is not available", name)
	}
	return nil
}

// MaxObjectSize implements [ieee1275.Environment.MaxObjectSize].
func (e *MockEnvironment) MaxObjectSize() (uint32, error) {
	if e.MaxSizeErr != nil {
		return 0, e.MaxSizeErr
	}
	return e.MaxSize, nil
}

// ReadObject implements [ieee1275.Environment.ReadObject].
func (e *MockEnvironment) ReadObject(consumer uint8, label string, bufSize uint32) ([]byte, uint32, error) {
	data, found := e.Objects[ObjectKey{Consumer: consumer, Label: label}]
	if !found {
		return nil, 0, ieee1275.ErrObjectNotFound
	}
	if uint64(len(data)) > uint64(bufSize) {
		return nil, 0, fmt.Errorf("object %q is larger (%d bytes) than the supplied buffer size of %d bytes", label, len(data), bufSize)
	}
	return data, 0, nil
}

// ReadSecureBootVar implements [ieee1275.Environment.ReadSecureBootVar].
func (e *MockEnvironment) ReadSecureBootVar(flags, vartype uint8, bufSize uint32) ([]byte, error) {
	if e.VarReads == nil {
		e.VarReads = make(map[uint8]int)
	}
	e.VarReads[vartype]++

	if err, found := e.VarErrs[vartype]; found {
		return nil, err
	}
	data, found := e.Vars[vartype]
	if !found {
		return nil, ieee1275.ErrObjectNotFound
	}
	if uint64(len(data)) > uint64(bufSize) {
		return nil, fmt.Errorf("variable %d is larger (%d bytes) than the supplied buffer size of %d bytes", vartype, len(data), bufSize)
	}
	return data, nil
}
