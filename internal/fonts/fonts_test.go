package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(dir, filepath.FromSlash(n))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Inter/Inter-Bold.ttf", "Inter/Inter-Regular.ttf", "Mono.OTF", "readme.txt")

	got, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Inter/Inter-Bold.ttf", "Inter/Inter-Regular.ttf", "Mono.OTF"}
	if len(got) != len(want) {
		t.Fatalf("ScanDir = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScanDir[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	missing, err := ScanDir(filepath.Join(dir, "nope"))
	if err != nil || len(missing) != 0 {
		t.Errorf("missing dir: %v, %v", missing, err)
	}
}

func TestFindIn(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Inter/Inter-Bold.ttf", "Inter/Inter-Regular.ttf", "Google_Sans_Code/GoogleSansCode.ttf")

	tests := []struct {
		search string
		want   string
	}{
		{"inter", "Inter/Inter-Regular.ttf"},
		{"Inter-Bold", "Inter/Inter-Bold.ttf"},
		{"google sans", "Google_Sans_Code/GoogleSansCode.ttf"},
		{"", "Inter/Inter-Regular.ttf"},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got, err := FindIn([]string{dir}, tt.search)
			if err != nil {
				t.Fatal(err)
			}
			if want := filepath.Join(dir, filepath.FromSlash(tt.want)); got != want {
				t.Errorf("FindIn(%q) = %q, want %q", tt.search, got, want)
			}
		})
	}

	if _, err := FindIn([]string{dir}, "comic"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no match: err = %v, want ErrNotExist", err)
	}
}
