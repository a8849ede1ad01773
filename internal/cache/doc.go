// Package cache keeps GitHub API responses in a SQLite database so that
// repeated scans within the TTL do not spend rate limit budget.
//
// The store is a single responses.db file (modernc.org/sqlite, WAL mode,
// one connection). Transport is an http.RoundTripper that serves fresh
// entries from the store and records successful and not found GET
// responses. Entries are keyed by method, URL and a hash of the
// Authorization header, so two tokens never share answers.
package cache
