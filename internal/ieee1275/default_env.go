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

package ieee1275

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	osReadFile = os.ReadFile

	secvarPath = "/sys/firmware/secvar" // Root of the kernel's secure variable interface
)

// plpksFormatPrefix is the prefix of the string in the secvar format file
// on hosts where the secure variables are backed by the Platform KeyStore.
// The kernel appends the value of the firmware's SB_VERSION object to it.
const plpksFormatPrefix = "ibm,plpks-sb-v"

func readSecvarFormat() (string, error) {
	data, err := osReadFile(filepath.Join(secvarPath, "format"))
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(data)), nil
}

func secureBootVarName(vartype uint8) (string, error) {
	switch vartype {
	case SBVarDB:
		return "db", nil
	case SBVarDBX:
		return "dbx", nil
	default:
		return "", fmt.Errorf("unrecognized secure boot variable type %d", vartype)
	}
}

type defaultEnvImpl struct{}

// Test implements [Environment.Test].
//
// The pks-* client interface services are all provided by the same firmware
// component, whose presence the kernel records with the "ibm,plpks-sb-v"
// secure variable format. Individual services cannot be tested from Linux.
func (defaultEnvImpl) Test(name string) error {
	format, err := readSecvarFormat()
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%s is not available: no secure variable support", name)
	case err != nil:
		return fmt.Errorf("cannot determine the secure variable format: %w", err)
	}

	if !strings.HasPrefix(format, plpksFormatPrefix) {
		return fmt.Errorf("%s is not available: secure variables have format %q", name, format)
	}
	return nil
}

// MaxObjectSize implements [Environment.MaxObjectSize].
func (defaultEnvImpl) MaxObjectSize() (uint32, error) {
	data, err := osReadFile(filepath.Join(secvarPath, "config", "max_object_size"))
	if err != nil {
		return 0, err
	}

	size, err := strconv.ParseUint(string(bytes.TrimSpace(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("cannot parse max_object_size: %w", err)
	}
	return uint32(size), nil
}

// ReadObject implements [Environment.ReadObject].
//
// The kernel does not expose arbitrary keystore objects. It consumes the
// firmware's SB_VERSION object to construct the secure variable format
// string, so the value of that object is recovered from there. The kernel
// has no notion of object policies, so the returned policies are always 0.
func (defaultEnvImpl) ReadObject(consumer uint8, label string, bufSize uint32) ([]byte, uint32, error) {
	if consumer != ConsumerFirmware || label != SBVersionLabel {
		return nil, 0, fmt.Errorf("cannot read object %q for consumer %d: the kernel only exposes the firmware's %s object", label, consumer, SBVersionLabel)
	}

	format, err := readSecvarFormat()
	switch {
	case os.IsNotExist(err):
		return nil, 0, ErrObjectNotFound
	case err != nil:
		return nil, 0, err
	}

	if !strings.HasPrefix(format, plpksFormatPrefix) {
		return nil, 0, ErrObjectNotFound
	}

	version, err := strconv.ParseUint(strings.TrimPrefix(format, plpksFormatPrefix), 10, 8)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot parse %s from the secure variable format %q: %w", SBVersionLabel, format, err)
	}

	if bufSize < 1 {
		return nil, 0, fmt.Errorf("%s is larger (1 byte) than the supplied buffer size of %d bytes", SBVersionLabel, bufSize)
	}
	return []byte{uint8(version)}, 0, nil
}

// ReadSecureBootVar implements [Environment.ReadSecureBootVar].
//
// The kernel only exposes the current instance of each variable, so the
// only supported flags value is 0.
func (defaultEnvImpl) ReadSecureBootVar(flags, vartype uint8, bufSize uint32) ([]byte, error) {
	if flags != 0 {
		return nil, fmt.Errorf("unsupported secure boot variable flags %#x", flags)
	}

	name, err := secureBootVarName(vartype)
	if err != nil {
		return nil, err
	}

	data, err := osReadFile(filepath.Join(secvarPath, "vars", name, "data"))
	switch {
	case os.IsNotExist(err):
		return nil, ErrObjectNotFound
	case err != nil:
		return nil, err
	}

	if uint64(len(data)) > uint64(bufSize) {
		return nil, fmt.Errorf("%s is larger (%d bytes) than the supplied buffer size of %d bytes", name, len(data), bufSize)
	}
	return data, nil
}

// DefaultEnv is an Environment that reads from the host machine via the
// kernel's secure variable interface.
var DefaultEnv = defaultEnvImpl{}
