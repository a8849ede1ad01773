package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantKind TargetKind
		wantSlug string
		wantErr  error
	}{
		{name: "bare username", input: "octocat", wantKind: TargetUser, wantSlug: "octocat"},
		{name: "username is lower-cased and trimmed", input: "  OctoCat ", wantKind: TargetUser, wantSlug: "octocat"},
		{name: "username with hyphen", input: "octo-cat", wantKind: TargetUser, wantSlug: "octo-cat"},
		{name: "owner/repo", input: "octocat/Hello-World", wantKind: TargetRepository, wantSlug: "octocat/hello-world"},
		{name: "https url", input: "https://github.com/octocat/hello-world", wantKind: TargetRepository, wantSlug: "octocat/hello-world"},
		{name: "url with trailing slash", input: "https://github.com/octocat/", wantKind: TargetUser, wantSlug: "octocat"},
		{name: "clone url", input: "https://github.com/octocat/hello-world.git", wantKind: TargetRepository, wantSlug: "octocat/hello-world"},
		{name: "host without scheme", input: "github.com/octocat/hello-world", wantKind: TargetRepository, wantSlug: "octocat/hello-world"},
		{name: "empty input", input: "   ", wantErr: ErrEmptyTarget},
		{name: "too many segments", input: "a/b/c", wantErr: ErrInvalidRepositoryFormat},
		{name: "missing repository name", input: "octocat/", wantKind: TargetUser, wantSlug: "octocat"},
		{name: "missing owner", input: "/repo", wantErr: ErrInvalidRepositoryFormat},
		{name: "forbidden characters", input: "octo_cat!", wantErr: ErrInvalidUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTarget(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind() != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, got.Kind())
			}
			if got.Slug() != tt.wantSlug {
				t.Errorf("expected slug %q, got %q", tt.wantSlug, got.Slug())
			}
		})
	}
}

func TestTargetSpec(t *testing.T) {
	t.Parallel()

	t.Run("repository accessors", func(t *testing.T) {
		t.Parallel()
		r := NewRepositoryTarget("octocat", "hello-world")
		if !r.IsRepository() || r.IsUser() {
			t.Error("expected repository target")
		}
		full, err := r.FullName()
		if err != nil || full != "octocat/hello-world" {
			t.Errorf("expected full name, got %q %v", full, err)
		}
		if r.String() != "GitHub repository octocat/hello-world" {
			t.Errorf("unexpected String: %q", r.String())
		}
	})

	t.Run("user has no full name", func(t *testing.T) {
		t.Parallel()
		u := NewUserTarget("octocat")
		if _, err := u.FullName(); !errors.Is(err, ErrNotRepository) {
			t.Errorf("expected ErrNotRepository, got %v", err)
		}
		if u.Username() != "octocat" || u.Name() != "" {
			t.Errorf("unexpected accessors: %q %q", u.Username(), u.Name())
		}
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		t.Parallel()
		var z TargetSpec
		if z.String() != "invalid target" || z.Kind().String() != "unknown" {
			t.Errorf("unexpected zero value: %q %q", z.String(), z.Kind())
		}
	})

	t.Run("json shape depends on kind", func(t *testing.T) {
		t.Parallel()
		repo, _ := json.Marshal(NewRepositoryTarget("o", "n"))
		if string(repo) != `{"kind":"repository","owner":"o","name":"n"}` {
			t.Errorf("unexpected repository JSON: %s", repo)
		}
		user, _ := json.Marshal(NewUserTarget("u"))
		if string(user) != `{"kind":"user","username":"u"}` {
			t.Errorf("unexpected user JSON: %s", user)
		}
	})
}
