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

package pks_test

import (
	"bytes"
	"crypto"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/binary"

	efi "github.com/canonical/go-efilib"

	. "gopkg.in/check.v1"

	. "github.com/canonical/go-pkslib"
	"github.com/canonical/go-pkslib/internal/pkstest"
)

type sigListSuite struct{}

var _ = Suite(&sigListSuite{})

var (
	testOwnerGuid = efi.MakeGUID(0x84862e0b, 0x24ef, 0x4a78, 0x8939, [...]uint8{0x2f, 0x0c, 0x2e, 0x76, 0xd6, 0x10})

	// An arbitrary signature type, unknown to the decoder, whose entries
	// carry 8 bytes of data.
	testShortKeyGuid = efi.MakeGUID(0x2e63ba5b, 0x1ef6, 0x4c74, 0x9b1f, [...]uint8{0x93, 0x0e, 0x51, 0x5a, 0x91, 0x7c})
)

func digest(c *C, alg crypto.Hash, msg string) []byte {
	h := alg.New()
	h.Write([]byte(msg))
	return h.Sum(nil)
}

// makeSignatureListHeader hand-builds a 28 byte signature list header for
// the malformed encodings that go-efilib refuses to produce.
func makeSignatureListHeader(typ efi.GUID, listSize, headerSize, entrySize uint32) []byte {
	hdr := make([]byte, 28)
	copy(hdr, typ[:])
	binary.LittleEndian.PutUint32(hdr[16:], listSize)
	binary.LittleEndian.PutUint32(hdr[20:], headerSize)
	binary.LittleEndian.PutUint32(hdr[24:], entrySize)
	return hdr
}

func (s *sigListSuite) TestDecodeSignatureDatabaseSingleList(c *C) {
	digests := [][]byte{
		digest(c, crypto.SHA256, "foo"),
		digest(c, crypto.SHA256, "bar"),
		digest(c, crypto.SHA256, "xyz")}
	data := pkstest.MakeSignatureDatabase(c,
		pkstest.NewSignatureListDigests(efi.CertSHA256Guid, testOwnerGuid, digests...))

	db, err := DecodeSignatureDatabase(data)
	c.Assert(err, IsNil)
	c.Assert(db, HasLen, 3)
	for i, record := range db {
		c.Check(record.Type, Equals, efi.CertSHA256Guid)
		c.Check(record.Data, DeepEquals, digests[i])
	}
}

func (s *sigListSuite) TestDecodeSignatureDatabaseMultipleLists(c *C) {
	cert := []byte("not-a-real-certificate")
	data := pkstest.MakeSignatureDatabase(c,
		pkstest.NewSignatureListX509(cert, testOwnerGuid),
		pkstest.NewSignatureListDigests(efi.CertSHA384Guid, testOwnerGuid,
			digest(c, crypto.SHA384, "foo"), digest(c, crypto.SHA384, "bar")))

	db, err := DecodeSignatureDatabase(data)
	c.Assert(err, IsNil)
	c.Assert(db, HasLen, 3)
	c.Check(db[0].Type, Equals, efi.CertX509Guid)
	c.Check(db[0].Data, DeepEquals, cert)
	c.Check(db[1].Type, Equals, efi.CertSHA384Guid)
	c.Check(db[1].Data, DeepEquals, digest(c, crypto.SHA384, "foo"))
	c.Check(db[2].Type, Equals, efi.CertSHA384Guid)
	c.Check(db[2].Data, DeepEquals, digest(c, crypto.SHA384, "bar"))
}

func (s *sigListSuite) TestDecodeSignatureDatabaseEmpty(c *C) {
	db, err := DecodeSignatureDatabase(nil)
	c.Check(err, IsNil)
	c.Check(db, HasLen, 0)
}

func (s *sigListSuite) TestDecodeSignatureListConsumesDeclaredSize(c *C) {
	list := pkstest.MakeSignatureDatabase(c,
		pkstest.NewSignatureListDigests(efi.CertSHA256Guid, testOwnerGuid,
			digest(c, crypto.SHA256, "foo")))
	trailing := append(append([]byte{}, list...), 0xde, 0xad, 0xbe, 0xef)

	var db []*SignatureRecord
	consumed, err := DecodeSignatureList(trailing, &db)
	c.Assert(err, IsNil)
	c.Check(consumed, Equals, len(list))
	c.Check(db, HasLen, 1)
}

func (s *sigListSuite) TestDecodeSignatureListHeaderOnly(c *C) {
	// A list can legally consist of just the 28 byte fixed header.
	data := makeSignatureListHeader(efi.CertSHA256Guid, 28, 0, 48)

	var db []*SignatureRecord
	consumed, err := DecodeSignatureList(data, &db)
	c.Assert(err, IsNil)
	c.Check(consumed, Equals, 28)
	c.Check(db, HasLen, 0)
}

func (s *sigListSuite) TestDecodeSignatureListSkipsHeaderBlob(c *C) {
	payload := digest(c, crypto.SHA256, "foo")
	list := &efi.SignatureList{
		Type:   efi.CertSHA256Guid,
		Header: []byte{0x01, 0x02, 0x03, 0x04},
		Signatures: []*efi.SignatureData{
			{Owner: testOwnerGuid, Data: payload}}}

	db, err := DecodeSignatureDatabase(pkstest.MakeSignatureDatabase(c, list))
	c.Assert(err, IsNil)
	c.Assert(db, HasLen, 1)
	c.Check(db[0].Data, DeepEquals, payload)
}

func (s *sigListSuite) TestDecodeSignatureListShortBuffer(c *C) {
	var db []*SignatureRecord
	_, err := DecodeSignatureList(make([]byte, 27), &db)
	c.Check(err, FitsTypeOf, InvalidSignatureListError{})
	c.Check(err, ErrorMatches, "invalid signature list: 27 bytes remaining in the buffer is too small for a signature list header")
	c.Check(db, HasLen, 0)
}

func (s *sigListSuite) TestDecodeSignatureListDeclaredSizeTooSmall(c *C) {
	data := makeSignatureListHeader(efi.CertSHA256Guid, 27, 0, 48)

	var db []*SignatureRecord
	_, err := DecodeSignatureList(data, &db)
	c.Check(err, FitsTypeOf, InvalidSignatureListError{})
	c.Check(err, ErrorMatches, "invalid signature list: declared size of 27 bytes is inconsistent with the remaining 28 bytes")
	c.Check(db, HasLen, 0)
}

func (s *sigListSuite) TestDecodeSignatureListDeclaredSizeOverrunsBuffer(c *C) {
	data := makeSignatureListHeader(efi.CertSHA256Guid, 1024, 0, 48)

	var db []*SignatureRecord
	_, err := DecodeSignatureList(data, &db)
	c.Check(err, FitsTypeOf, InvalidSignatureListError{})
	c.Check(err, ErrorMatches, "invalid signature list: declared size of 1024 bytes is inconsistent with the remaining 28 bytes")
	c.Check(db, HasLen, 0)
}

func (s *sigListSuite) TestDecodeSignatureListHeaderBlobOverflowsList(c *C) {
	data := append(makeSignatureListHeader(efi.CertSHA256Guid, 32, 8, 48), make([]byte, 4)...)

	var db []*SignatureRecord
	_, err := DecodeSignatureList(data, &db)
	c.Check(err, FitsTypeOf, InvalidSignatureListError{})
	c.Check(err, ErrorMatches, "invalid signature list: signature header size of 8 bytes overflows the list")
	c.Check(db, HasLen, 0)
}

func (s *sigListSuite) TestDecodeSignatureListEntrySizeTooSmall(c *C) {
	data := append(makeSignatureListHeader(efi.CertSHA256Guid, 44, 0, 16), make([]byte, 16)...)

	var db []*SignatureRecord
	_, err := DecodeSignatureList(data, &db)
	c.Check(err, FitsTypeOf, InvalidSignatureListError{})
	c.Check(err, ErrorMatches, "invalid signature list: signature size of 16 bytes is too small for an entry header")
	c.Check(db, HasLen, 0)
}

func (s *sigListSuite) TestDecodeSignatureListRunNotMultipleOfEntrySize(c *C) {
	data := append(makeSignatureListHeader(efi.CertSHA256Guid, 58, 0, 20), make([]byte, 30)...)

	var db []*SignatureRecord
	_, err := DecodeSignatureList(data, &db)
	c.Check(err, FitsTypeOf, InvalidSignatureListError{})
	c.Check(err, ErrorMatches, "invalid signature list: signatures occupy 30 bytes, which is not a multiple of the signature size of 20 bytes")
	c.Check(db, HasLen, 0)
}

func (s *sigListSuite) TestDecodeSignatureDatabasePartialAccumulation(c *C) {
	valid := pkstest.MakeSignatureDatabase(c,
		pkstest.NewSignatureListDigests(efi.CertSHA256Guid, testOwnerGuid,
			digest(c, crypto.SHA256, "foo"), digest(c, crypto.SHA256, "bar")))
	data := append(append([]byte{}, valid...), makeSignatureListHeader(efi.CertSHA256Guid, 20, 0, 48)...)

	var db []*SignatureRecord
	err := DecodeSignatureDatabaseInto(data, &db)
	c.Check(err, FitsTypeOf, InvalidSignatureListError{})
	// The records of the leading valid list stay visible to the caller.
	c.Check(db, HasLen, 2)
}

func (s *sigListSuite) TestDecodeSignatureDatabaseDiscardsPartialRecords(c *C) {
	valid := pkstest.MakeSignatureDatabase(c,
		pkstest.NewSignatureListDigests(efi.CertSHA256Guid, testOwnerGuid,
			digest(c, crypto.SHA256, "foo")))
	data := append(append([]byte{}, valid...), 0xff)

	db, err := DecodeSignatureDatabase(data)
	c.Check(err, FitsTypeOf, InvalidSignatureListError{})
	c.Check(db, IsNil)
}

func (s *sigListSuite) TestDecodeSignatureRecordDataIsACopy(c *C) {
	data := pkstest.MakeSignatureDatabase(c,
		pkstest.NewSignatureListDigests(efi.CertSHA256Guid, testOwnerGuid,
			digest(c, crypto.SHA256, "foo")))

	db, err := DecodeSignatureDatabase(data)
	c.Assert(err, IsNil)
	c.Assert(db, HasLen, 1)

	for i := range data {
		data[i] = 0xff
	}
	c.Check(db[0].Data, DeepEquals, digest(c, crypto.SHA256, "foo"))
}

func (s *sigListSuite) TestDigestAlgorithm(c *C) {
	for _, t := range []struct {
		typ efi.GUID
		alg crypto.Hash
		ok  bool
	}{
		{efi.CertSHA256Guid, crypto.SHA256, true},
		{efi.CertSHA384Guid, crypto.SHA384, true},
		{efi.CertSHA512Guid, crypto.SHA512, true},
		{CertX509SHA256Guid, crypto.SHA256, true},
		{CertX509SHA384Guid, crypto.SHA384, true},
		{CertX509SHA512Guid, crypto.SHA512, true},
		{efi.CertX509Guid, 0, false},
		{testShortKeyGuid, 0, false},
	} {
		record := &SignatureRecord{Type: t.typ}
		alg, ok := record.DigestAlgorithm()
		c.Check(ok, Equals, t.ok, Commentf("type %v", t.typ))
		c.Check(alg, Equals, t.alg, Commentf("type %v", t.typ))
	}
}

func (s *sigListSuite) TestSignatureDatabaseRoundTrip(c *C) {
	// The decoder's view of a database generated by go-efilib matches
	// go-efilib's own view of it.
	lists := []*efi.SignatureList{
		pkstest.NewSignatureListX509([]byte("certificate"), testOwnerGuid),
		pkstest.NewSignatureListDigests(efi.CertSHA256Guid, testOwnerGuid,
			digest(c, crypto.SHA256, "foo"), digest(c, crypto.SHA256, "bar"))}
	data := pkstest.MakeSignatureDatabase(c, lists...)

	reference, err := efi.ReadSignatureDatabase(bytes.NewReader(data))
	c.Assert(err, IsNil)

	db, err := DecodeSignatureDatabase(data)
	c.Assert(err, IsNil)

	var expected []*SignatureRecord
	for _, l := range reference {
		for _, sig := range l.Signatures {
			expected = append(expected, &SignatureRecord{Type: l.Type, Data: sig.Data})
		}
	}
	c.Check(db, DeepEquals, expected)
}
