package pathalias

import (
	"reflect"
	"testing"
)

// Typical monorepo compiler options:
//   baseUrl: "."
//   paths: { "@app/*": ["src/*"] }
//
// @app/services/user → /project/src/services/user

func TestCandidates_WildcardAlias(t *testing.T) {
	r := New(Config{
		PathsBaseDir: "/project",
		Paths:        map[string][]string{"@app/*": {"src/*"}},
	})

	got := r.Candidates("@app/services/user")
	want := []string{"/project/src/services/user"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestCandidates_ExactAlias(t *testing.T) {
	r := New(Config{
		PathsBaseDir: "/project",
		Paths:        map[string][]string{"@config": {"./src/config"}},
	})

	got := r.Candidates("@config")
	want := []string{"/project/src/config"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestCandidates_ExactMatchBeforeWildcard(t *testing.T) {
	r := New(Config{
		PathsBaseDir: "/project",
		Paths: map[string][]string{
			"@app/*":      {"src/*"},
			"@app/config": {"config/index"},
		},
	})

	got := r.Candidates("@app/config")
	want := []string{"/project/config/index"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestCandidates_LongestPrefixWins(t *testing.T) {
	r := New(Config{
		PathsBaseDir: "/project",
		Paths: map[string][]string{
			"@app/*":        {"src/*"},
			"@app/models/*": {"src/domain/models/*"},
		},
	})

	got := r.Candidates("@app/models/user")
	want := []string{"/project/src/domain/models/user"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestCandidates_SuffixPattern(t *testing.T) {
	r := New(Config{
		PathsBaseDir: "/project",
		Paths:        map[string][]string{"*.model": {"src/models/*"}},
	})

	got := r.Candidates("user.model")
	want := []string{"/project/src/models/user"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestCandidates_FallbacksInOrder(t *testing.T) {
	r := New(Config{
		PathsBaseDir: "/project",
		Paths:        map[string][]string{"@shared/*": {"libs/shared/*", "vendor/shared/*"}},
	})

	got := r.Candidates("@shared/dto")
	want := []string{"/project/libs/shared/dto", "/project/vendor/shared/dto"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestCandidates_BaseURL(t *testing.T) {
	r := New(Config{
		BaseURL: "/project/src",
		Paths:   map[string][]string{"@app/*": {"*"}},
	})

	got := r.Candidates("@app/user")
	want := []string{"/project/src/user", "/project/src/@app/user"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}

	got = r.Candidates("models/user")
	want = []string{"/project/src/models/user"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestCandidates_NoMatch(t *testing.T) {
	r := New(Config{
		PathsBaseDir: "/project",
		Paths:        map[string][]string{"@app/*": {"src/*"}},
	})

	for _, spec := range []string{"./local", "../up", "/abs/path", "@nestjs/common", ""} {
		if got := r.Candidates(spec); len(got) != 0 {
			t.Errorf("Candidates(%q) = %v, want none", spec, got)
		}
	}
}

func TestCandidates_NilResolver(t *testing.T) {
	var r *Resolver
	if got := r.Candidates("@app/x"); got != nil {
		t.Errorf("nil resolver returned %v", got)
	}
	if r.HasAliases() {
		t.Error("nil resolver has no aliases")
	}
}

func TestHasAliases(t *testing.T) {
	if New(Config{}).HasAliases() {
		t.Error("expected HasAliases to be false for empty paths")
	}
	if !New(Config{Paths: map[string][]string{"@app/*": {"src/*"}}}).HasAliases() {
		t.Error("expected HasAliases to be true")
	}
}
