package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Prints a bcrypt hash for OPERATOR_PASSWORD_HASH.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: go run ./tools/cmd/hashpw <password>")
		os.Exit(2)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(h))
}
