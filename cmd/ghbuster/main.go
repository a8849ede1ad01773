// Package main provides the entry point for the ghbuster CLI.
//
// ghbuster detects inauthentic activity on GitHub: fake accounts, bought
// stars and repositories whose commits come from throwaway identities.
//
// Usage:
//
//	ghbuster scan <user>
//	ghbuster scan <owner/repo>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
