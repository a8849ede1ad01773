// Package model defines the data shared by the scanner, the heuristics and
// the report writers:
//   - TargetSpec: the user or repository being scanned
//   - Result and Outcome: the verdict of one heuristic
//   - EmailRecord and EmailSet: commit author emails and their account linkage
//   - ScanReport: everything one run produced
//
// The types live apart from their producers so that heuristic, scanner and
// report can share them without import cycles.
package model
