package model

import "strings"

// LinkageState tells how a commit email relates to GitHub accounts.
type LinkageState int

const (
	// Unlinked covers commits with no recorded account and commits whose
	// account no longer resolves. Both are treated the same.
	Unlinked LinkageState = iota

	// LinkedToCurrentUser means the email maps to the scanned user.
	LinkedToCurrentUser

	// LinkedToOtherUser means the email maps to some other live account.
	LinkedToOtherUser
)

// String returns a human-readable representation of the linkage state.
func (s LinkageState) String() string {
	switch s {
	case Unlinked:
		return "unlinked"
	case LinkedToCurrentUser:
		return "linked to current user"
	case LinkedToOtherUser:
		return "linked to other user"
	default:
		return "unknown"
	}
}

// EmailRecord is one distinct commit author email.
type EmailRecord struct {
	Address string
	Linkage LinkageState
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// EmailSet holds EmailRecords keyed by normalized address in insertion order.
// When an address is added twice only the first record is kept, even if the
// linkage differs.
type EmailSet struct {
	records []EmailRecord
	index   map[string]int
}

// NewEmailSet returns an empty set.
func NewEmailSet() *EmailSet {
	return &EmailSet{index: make(map[string]int)}
}

// Add inserts the record unless its address is already present.
// It reports whether the record was inserted.
func (s *EmailSet) Add(record EmailRecord) bool {
	record.Address = NormalizeEmail(record.Address)
	if _, ok := s.index[record.Address]; ok {
		return false
	}
	s.index[record.Address] = len(s.records)
	s.records = append(s.records, record)
	return true
}

// Merge adds every record of other, keeping first-seen records of s.
func (s *EmailSet) Merge(other *EmailSet) {
	if other == nil {
		return
	}
	for _, r := range other.records {
		s.Add(r)
	}
}

// Get returns the record for address.
func (s *EmailSet) Get(address string) (EmailRecord, bool) {
	i, ok := s.index[NormalizeEmail(address)]
	if !ok {
		return EmailRecord{}, false
	}
	return s.records[i], true
}

// Len returns the number of distinct addresses.
func (s *EmailSet) Len() int {
	return len(s.records)
}

// Records returns a copy of the records in insertion order.
func (s *EmailSet) Records() []EmailRecord {
	out := make([]EmailRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Addresses returns the addresses in insertion order.
func (s *EmailSet) Addresses() []string {
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.Address
	}
	return out
}

// Any reports whether some record has the given linkage.
func (s *EmailSet) Any(state LinkageState) bool {
	for _, r := range s.records {
		if r.Linkage == state {
			return true
		}
	}
	return false
}
