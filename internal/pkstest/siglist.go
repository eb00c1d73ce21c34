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

package pkstest

import (
	"bytes"

	efi "github.com/canonical/go-efilib"

	. "gopkg.in/check.v1"
)

// MakeSignatureDatabase returns the serialized form of the supplied
// signature lists, suitable as the payload of a mock db or dbx variable.
// The encoding is go-efilib's, which keeps the fixtures independent of
// the decoder under test.
func MakeSignatureDatabase(c *C, lists ...*efi.SignatureList) []byte {
	buf := new(bytes.Buffer)
	c.Assert(efi.SignatureDatabase(lists).Write(buf), IsNil)
	return buf.Bytes()
}

// NewSignatureListX509 returns a signature list containing the supplied
// X.509 certificate.
func NewSignatureListX509(cert []byte, owner efi.GUID) *efi.SignatureList {
	return &efi.SignatureList{
		Type: efi.CertX509Guid,
		Signatures: []*efi.SignatureData{
			{
				Owner: owner,
				Data:  cert,
			},
		},
	}
}

// NewSignatureListDigests returns a signature list of the supplied type
// containing one entry per digest, all owned by the supplied GUID. The
// digests must all have the size implied by the type GUID, as entries
// within one list share a single size.
func NewSignatureListDigests(typ, owner efi.GUID, digests ...[]byte) *efi.SignatureList {
	esl := &efi.SignatureList{Type: typ}
	for _, digest := range digests {
		esl.Signatures = append(esl.Signatures, &efi.SignatureData{Owner: owner, Data: digest})
	}
	return esl
}
