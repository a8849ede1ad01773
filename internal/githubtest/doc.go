// Package githubtest provides an in-memory GitHub API for tests.
package githubtest
