package updater

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- Version comparison ---

func TestIsNewer(t *testing.T) {
	cases := []struct {
		current, latest string
		want            bool
	}{
		{"1.0.0", "1.0.1", true},
		{"1.0.0", "1.1.0", true},
		{"1.0.0", "2.0.0", true},
		{"1.2.3", "1.2.3", false},
		{"2.0.0", "1.9.9", false},
		{"1.0", "1.0.1", true},
		{"dev", "9.9.9", false},
		{"", "1.0.0", false},
		{"1.0.0", "", false},
	}
	for _, tc := range cases {
		if got := isNewer(tc.current, tc.latest); got != tc.want {
			t.Errorf("isNewer(%q, %q) = %v, want %v", tc.current, tc.latest, got, tc.want)
		}
	}
}

func TestLeadingInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"12", 12},
		{"3-rc1", 3},
		{"", 0},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := leadingInt(tc.in); got != tc.want {
			t.Errorf("leadingInt(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

// --- Check ---

func withStubRelease(t *testing.T, status int, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	orig := releaseEndpoint
	releaseEndpoint = srv.URL
	t.Cleanup(func() {
		releaseEndpoint = orig
		srv.Close()
	})
}

func TestCheck_UpdateAvailable(t *testing.T) {
	withStubRelease(t, http.StatusOK,
		`{"tag_name":"v2.0.0","html_url":"https://example.com/rel/v2.0.0","assets":[]}`)

	release, ok := Check("1.0.0")
	if !ok {
		t.Fatal("expected an available update")
	}
	if release.Version() != "2.0.0" {
		t.Errorf("Version() = %q, want 2.0.0", release.Version())
	}
}

func TestCheck_AlreadyCurrent(t *testing.T) {
	withStubRelease(t, http.StatusOK, `{"tag_name":"v1.0.0"}`)

	if _, ok := Check("1.0.0"); ok {
		t.Fatal("no update expected at the same version")
	}
}

func TestCheck_APIFailureIsSilent(t *testing.T) {
	withStubRelease(t, http.StatusInternalServerError, "boom")

	release, ok := Check("1.0.0")
	if ok || release != nil {
		t.Fatal("a failed check must report no update, not an error")
	}
}

func TestCheck_DevBuildNeverUpdates(t *testing.T) {
	withStubRelease(t, http.StatusOK, `{"tag_name":"v9.9.9"}`)

	if _, ok := Check("dev"); ok {
		t.Fatal("dev builds must never self-update")
	}
}
