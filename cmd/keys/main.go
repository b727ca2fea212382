// keys genera seeds ed25519 para los códecs de tokens de gatekeep.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
)

func main() {
	var (
		flagBoth = flag.Bool("pair", true, "genera seeds para access y refresh")
	)
	flag.Parse()

	if *flagBoth {
		a, err := newSeed()
		if err != nil {
			fail(err)
		}
		r, err := newSeed()
		if err != nil {
			fail(err)
		}
		fmt.Println("# Agregar al .env (o al secret manager):")
		fmt.Printf("JWT_ACCESS_SEED=%s\n", a)
		fmt.Printf("JWT_REFRESH_SEED=%s\n", r)
		return
	}

	s, err := newSeed()
	if err != nil {
		fail(err)
	}
	fmt.Println(s)
}

func newSeed() (string, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(seed), nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
