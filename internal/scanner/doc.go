// Package scanner drives a ghbuster scan of one target.
//
// A Scanner moves through a fixed sequence of stages:
//
//	Unauthenticated -> Authenticated -> TargetValidated -> Scanned
//
// Authenticate checks the token, ValidateTarget checks that the user or
// repository exists, PreCheck runs the legitimacy gate for user targets and
// Scan runs the selected heuristics. Run performs all of them and stops
// early when the gate says the user looks legitimate, unless forced.
//
// Heuristics and stargazer sub-scans run on bounded errgroup pools. Results
// are stored by registry position, never by completion order, so reports
// are deterministic whatever the concurrency.
package scanner
