// Package github is a small client for the parts of the GitHub REST API that
// ghbuster reads: profiles, repositories, branches, commits, stargazers,
// listing counts and issue search.
//
// Listings are exposed as iter.Seq2 sequences that fetch pages on demand.
// Non-2xx responses become *UpstreamError values; the Is* helpers classify
// the statuses the detectors recover from (not found, access blocked,
// validation failed, empty repository).
package github
