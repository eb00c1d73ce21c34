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
	"crypto"
	"encoding/binary"
	"fmt"

	efi "github.com/canonical/go-efilib"
)

var (
	// CertX509SHA256Guid corresponds to the EFI_CERT_X509_SHA256_GUID type,
	// which describes a record containing the SHA-256 digest of an X509
	// certificate together with a revocation time.
	CertX509SHA256Guid = efi.MakeGUID(0x3bd2a492, 0x96c0, 0x4079, 0xb420, [...]uint8{0xfc, 0xf9, 0x8e, 0xf1, 0x03, 0xed})

	// CertX509SHA384Guid corresponds to the EFI_CERT_X509_SHA384_GUID type.
	CertX509SHA384Guid = efi.MakeGUID(0x7076876e, 0x80c2, 0x4ee6, 0xaad2, [...]uint8{0x28, 0xb3, 0x49, 0xa6, 0x86, 0x5b})

	// CertX509SHA512Guid corresponds to the EFI_CERT_X509_SHA512_GUID type.
	CertX509SHA512Guid = efi.MakeGUID(0x446dbf63, 0x2502, 0x4cda, 0xbcfa, [...]uint8{0x24, 0x65, 0xd2, 0xb0, 0xfe, 0x9d})
)

const (
	// eslHeaderSize is the size of the fixed EFI_SIGNATURE_LIST header.
	eslHeaderSize = 28

	// signatureOwnerSize is the size of the owner GUID at the start of
	// every signature entry.
	signatureOwnerSize = 16
)

// SignatureRecord corresponds to a single signature from a decoded
// signature database.
type SignatureRecord struct {
	// Type is the type GUID of the signature list that this signature
	// was read from. All signatures within one list share it. The
	// owner GUIDs carried by the individual entries are not retained.
	Type efi.GUID

	// Data is a copy of the signature's data portion, with the entry
	// header stripped. Its interpretation depends on Type - a DER
	// encoded X509 certificate, a digest, or a digest with additional
	// revocation metadata.
	Data []byte
}

// DigestAlgorithm returns the digest algorithm for records whose type
// describes a digest, which covers the dbx forms that revoke binaries or
// certificates by hash. It returns false for types that do not describe a
// digest, such as X509 certificates.
func (r *SignatureRecord) DigestAlgorithm() (crypto.Hash, bool) {
	switch r.Type {
	case efi.CertSHA256Guid, CertX509SHA256Guid:
		return crypto.SHA256, true
	case efi.CertSHA384Guid, CertX509SHA384Guid:
		return crypto.SHA384, true
	case efi.CertSHA512Guid, CertX509SHA512Guid:
		return crypto.SHA512, true
	default:
		return 0, false
	}
}

// decodeSignatureList decodes the EFI signature list at the start of data,
// appending one record per entry to db, and returns the number of bytes
// the list occupies so that the caller can advance past it. Records
// appended before a failure are left in db for the caller to account for.
func decodeSignatureList(data []byte, db *[]*SignatureRecord) (int, error) {
	if len(data) < eslHeaderSize {
		return 0, InvalidSignatureListError{fmt.Sprintf("%d bytes remaining in the buffer is too small for a signature list header", len(data))}
	}

	var listType efi.GUID
	copy(listType[:], data)
	listSize := binary.LittleEndian.Uint32(data[16:])
	headerSize := binary.LittleEndian.Uint32(data[20:])
	entrySize := binary.LittleEndian.Uint32(data[24:])

	if listSize < eslHeaderSize || uint64(listSize) > uint64(len(data)) {
		return 0, InvalidSignatureListError{fmt.Sprintf("declared size of %d bytes is inconsistent with the remaining %d bytes", listSize, len(data))}
	}
	if headerSize > listSize-eslHeaderSize {
		return 0, InvalidSignatureListError{fmt.Sprintf("signature header size of %d bytes overflows the list", headerSize)}
	}
	if entrySize <= signatureOwnerSize {
		return 0, InvalidSignatureListError{fmt.Sprintf("signature size of %d bytes is too small for an entry header", entrySize)}
	}

	entries := data[eslHeaderSize+int(headerSize) : listSize]
	if uint32(len(entries))%entrySize != 0 {
		return 0, InvalidSignatureListError{fmt.Sprintf("signatures occupy %d bytes, which is not a multiple of the signature size of %d bytes", len(entries), entrySize)}
	}

	dataSize := int(entrySize) - signatureOwnerSize
	for len(entries) > 0 {
		record := &SignatureRecord{Type: listType, Data: make([]byte, dataSize)}
		copy(record.Data, entries[signatureOwnerSize:entrySize])
		*db = append(*db, record)
		entries = entries[entrySize:]
	}

	return int(listSize), nil
}

// decodeSignatureDatabase decodes the sequence of EFI signature lists in
// data, appending the records of each list to db in order. Decoding stops
// at the first invalid list, leaving the records of the preceding lists in
// db for the caller to account for.
func decodeSignatureDatabase(data []byte, db *[]*SignatureRecord) error {
	for len(data) > 0 {
		consumed, err := decodeSignatureList(data, db)
		if err != nil {
			return err
		}
		data = data[consumed:]
	}
	return nil
}

// DecodeSignatureDatabase decodes a signature database consisting of zero
// or more EFI signature lists, such as the payload of the db or dbx secure
// boot variables.
func DecodeSignatureDatabase(data []byte) ([]*SignatureRecord, error) {
	var db []*SignatureRecord
	if err := decodeSignatureDatabase(data, &db); err != nil {
		return nil, err
	}
	return db, nil
}
