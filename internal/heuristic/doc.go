// Package heuristic holds the detectors ghbuster runs against a GitHub user
// or repository.
//
// Every detector implements Heuristic and is bound to one target kind. A
// detector reads what it needs through the Env it is given and returns a
// model.Result: Triggered with evidence, Passed, or Skipped when it
// deliberately opts out (for example above a sampling cap).
//
// The catalogue is fixed. All returns it in registry order, which is also
// the order results are reported in. Composite detectors never run other
// detectors themselves: they describe sub-scans and hand them to the
// SubScanner in their Env, which the scanner implements.
package heuristic
