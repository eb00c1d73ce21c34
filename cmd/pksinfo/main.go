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

// pksinfo prints the secure boot key databases of the host's Platform
// KeyStore, or decodes signature database blobs from files.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v2"

	pks "github.com/canonical/go-pkslib"
)

type options struct {
	YAML    bool   `long:"yaml" description:"Print the key databases in YAML format"`
	DbFile  string `long:"db-file" description:"Decode an allowed signature database from the supplied file instead of loading the host's Platform KeyStore"`
	DbxFile string `long:"dbx-file" description:"Decode a revocation signature database from the supplied file instead of loading the host's Platform KeyStore"`
}

var opts options

type recordInfo struct {
	Type   string `yaml:"type"`
	Digest string `yaml:"digest,omitempty"`
	Size   int    `yaml:"size"`
	Data   string `yaml:"data"`
}

type storeInfo struct {
	TrustMode     string       `yaml:"trust-mode"`
	UseStaticKeys bool         `yaml:"fallback-to-static-keys"`
	Db            []recordInfo `yaml:"db"`
	Dbx           []recordInfo `yaml:"dbx"`
}

func describeRecords(records []*pks.SignatureRecord) []recordInfo {
	var out []recordInfo
	for _, record := range records {
		info := recordInfo{
			Type: record.Type.String(),
			Size: len(record.Data),
			Data: hex.EncodeToString(record.Data)}
		if alg, ok := record.DigestAlgorithm(); ok {
			info.Digest = alg.String()
		}
		out = append(out, info)
	}
	return out
}

func printRecords(name string, records []recordInfo) {
	fmt.Printf("%s: %d records\n", name, len(records))
	for i, record := range records {
		fmt.Printf("  %d: type %s", i, record.Type)
		if record.Digest != "" {
			fmt.Printf(" (%s)", record.Digest)
		}
		fmt.Printf(", %d bytes\n     %s\n", record.Size, record.Data)
	}
}

func printStore(info *storeInfo) error {
	if opts.YAML {
		out, err := yaml.Marshal(info)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	fmt.Println("trust mode:", info.TrustMode)
	if info.TrustMode == "static" {
		return nil
	}
	fmt.Println("fallback to static keys for the allowed list:", info.UseStaticKeys)
	printRecords("db", info.Db)
	printRecords("dbx", info.Dbx)
	return nil
}

func decodeFiles() (*storeInfo, error) {
	info := &storeInfo{TrustMode: "offline"}

	for _, f := range []struct {
		path    string
		records *[]recordInfo
	}{
		{opts.DbFile, &info.Db},
		{opts.DbxFile, &info.Dbx},
	} {
		if f.path == "" {
			continue
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, err
		}
		records, err := pks.DecodeSignatureDatabase(data)
		if err != nil {
			return nil, fmt.Errorf("cannot decode %s: %w", f.path, err)
		}
		*f.records = describeRecords(records)
	}
	return info, nil
}

func loadHostStore() (*storeInfo, error) {
	err := pks.InitializeKeyStore()
	store := pks.GetKeyStore()

	if store == nil {
		if err != nil && err != pks.ErrNoKeyStoreSupport {
			return nil, err
		}
		// Not an error - the keys built into the boot chain govern
		// verification on this host.
		return &storeInfo{TrustMode: "static"}, nil
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "the key store is degraded:", err)
	}
	return &storeInfo{
		TrustMode:     "dynamic",
		UseStaticKeys: store.UseStaticKeys(),
		Db:            describeRecords(store.Db()),
		Dbx:           describeRecords(store.Dbx())}, nil
}

func run() error {
	if _, err := flags.Parse(&opts); err != nil {
		return err
	}

	var info *storeInfo
	var err error
	if opts.DbFile != "" || opts.DbxFile != "" {
		info, err = decodeFiles()
	} else {
		info, err = loadHostStore()
	}
	if err != nil {
		return err
	}
	return printStore(info)
}

func main() {
	if err := run(); err != nil {
		switch e := err.(type) {
		case *flags.Error:
			// flags already prints this
			if e.Type != flags.ErrHelp {
				os.Exit(1)
			}
		default:
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
