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

/*
Package pks provides access to the secure boot key databases held in the
Platform KeyStore on POWER LPARs.

The Platform KeyStore (PKS) is a small pool of storage managed by the
firmware. When dynamic secure boot key management is enabled, it holds the
db and dbx secure boot variables, each of which contains a sequence of EFI
signature lists describing the keys and digests that boot components must
be verified against. When dynamic key management is disabled or
unavailable, verification falls back to a set of keys built into the boot
chain instead.

InitializeKeyStore makes the trust mode decision for the current boot and,
where the keystore is in use, decodes both variables into an in-memory key
store that can be obtained with GetKeyStore. This package performs no
signature verification itself - that is the job of the consumer of the key
store.
*/
package pks
