package main

import (
	"fmt"
	"os"

	"github.com/tradiehq/portal-server-go/internal/util"
)

// Prints a fresh organization API key and the hash to store in
// organizations.api_key_hash.
func main() {
	key, err := util.GenerateAPIKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("api key:  %s\n", key)
	fmt.Printf("key hash: %s\n", util.HashAPIKey(key))
}
