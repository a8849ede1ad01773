// Package identity answers whether an account or repository still resolves
// on GitHub.
//
// A Resolver memoizes every answer for its own lifetime, so each scan
// builds fresh resolvers and no answer leaks across scans. Concurrent
// lookups of the same key share one upstream call.
package identity
