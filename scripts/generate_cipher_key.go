//go:build ignore

package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generate_cipher_key writes a random 32-byte secret, hex encoded, for
// CRYPTO_KEY_FILE. It refuses to overwrite an existing key: rotating the key
// makes every stored PII field unreadable.
//
//	go run scripts/generate_cipher_key.go -out data/keys/order-pii.key
func main() {
	out := flag.String("out", "data/keys/order-pii.key", "path of the key file to create")
	flag.Parse()

	if _, err := os.Stat(*out); err == nil {
		log.Fatalf("Key file %s already exists, refusing to overwrite", *out)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o700); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	if err := os.WriteFile(*out, []byte(hex.EncodeToString(secret)+"\n"), 0o600); err != nil {
		log.Fatalf("Failed to write key file: %v", err)
	}

	fmt.Printf("Wrote new cipher key to %s\n", *out)
	fmt.Println("Set CRYPTO_KEY_FILE to this path, or upload it to the bucket named by CRYPTO_KEY_S3_BUCKET.")
}
