// Package main encrypts and decrypts key material for operator hand-off.
// Ciphertexts are base64(iv || aes-cbc(payload)) and carry no authentication
// tag, so they must only travel over channels that are trusted end to end.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"crypto-price-lab/internal/keycrypt"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  keycrypt encrypt [--plaintext] <base64-key> <payload>
  keycrypt decrypt [--plaintext] <base64-key> <ciphertext>

By default the payload is a hex string (a raw private key) and decrypt
prints hex. With --plaintext the payload is arbitrary text.
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	plaintext := fs.Bool("plaintext", false, "Treat the payload as arbitrary text instead of hex")
	if err := fs.Parse(os.Args[2:]); err != nil {
		usage()
	}
	if fs.NArg() != 2 {
		usage()
	}
	keyB64, payload := fs.Arg(0), fs.Arg(1)

	switch cmd {
	case "encrypt":
		var out string
		var err error
		if *plaintext {
			out, err = keycrypt.EncryptPlaintext(keyB64, payload)
		} else {
			out, err = keycrypt.EncryptHex(keyB64, payload)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encrypt error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)

	case "decrypt":
		data, err := keycrypt.DecryptB64Key(keyB64, payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Decrypt error: %v\n", err)
			os.Exit(1)
		}
		if *plaintext {
			fmt.Println(string(data))
		} else {
			fmt.Println(hex.EncodeToString(data))
		}

	default:
		usage()
	}
}
