// Package emails extracts the distinct commit author emails of a user or a
// repository and classifies how each one is linked to GitHub accounts.
//
// Extraction samples a bounded number of commits per repository. The
// budget is shared by all branches of a repository: once it is spent the
// remaining branches are not visited, so multi-branch histories may be
// under-sampled.
package emails
