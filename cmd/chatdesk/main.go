// chatdesk: chat support MCP server
//
// Exposes a customer support database (users and their chat messages) to
// MCP clients as tools, resources and prompts.
//
// Usage:
//
//	chatdesk serve                     # Start MCP server (stdio transport)
//	chatdesk serve --transport http    # Start MCP server over streamable HTTP
//	chatdesk migrate                   # Create or update the schema
//	chatdesk seed --users 20           # Fill the database with fake data
//	chatdesk query users               # Inspect stored users
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
