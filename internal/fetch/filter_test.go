package fetch

import (
	"errors"
	"testing"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
)

func descriptors(names ...string) []catalog.FileDescriptor {
	fds := make([]catalog.FileDescriptor, len(names))
	for i, n := range names {
		fds[i] = catalog.FileDescriptor{Name: n}
	}
	return fds
}

func names(fds []catalog.FileDescriptor) []string {
	out := make([]string, len(fds))
	for i, fd := range fds {
		out[i] = fd.Name
	}
	return out
}

func TestCompilePatternEmptyMatchesAll(t *testing.T) {
	m, err := CompilePattern("")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	in := descriptors("a.grib2", "b.index", "c.nc")
	got := m.Apply(in)
	if len(got) != len(in) {
		t.Fatalf("got %d, want %d", len(got), len(in))
	}
}

func TestCompilePatternInvalid(t *testing.T) {
	_, err := CompilePattern("[unterminated")
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	m, err := CompilePattern(`\.grib2$`)
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	in := descriptors(
		"run-48h-oper-fc.grib2",
		"run-0h-oper-fc.index",
		"run-0h-oper-fc.grib2",
		"run-24h-oper-fc.grib2",
	)
	got := names(m.Apply(in))
	want := []string{"run-48h-oper-fc.grib2", "run-0h-oper-fc.grib2", "run-24h-oper-fc.grib2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestApplyIsUnanchored(t *testing.T) {
	m, _ := CompilePattern("24h")
	got := m.Apply(descriptors("run-24h-oper-fc.grib2", "run-0h-oper-fc.grib2"))
	if len(got) != 1 || got[0].Name != "run-24h-oper-fc.grib2" {
		t.Fatalf("got %v", names(got))
	}
}

func TestApplyIsCaseSensitive(t *testing.T) {
	m, _ := CompilePattern("OPER")
	if got := m.Apply(descriptors("run-24h-oper-fc.grib2")); len(got) != 0 {
		t.Fatalf("uppercase pattern matched lowercase name: %v", names(got))
	}
}

func TestApplyNoMatchesIsEmptyNotError(t *testing.T) {
	m, _ := CompilePattern("nothing-matches-this")
	got := m.Apply(descriptors("a.grib2", "b.grib2"))
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", names(got))
	}
}

func TestApplyMatchesNameNotURL(t *testing.T) {
	m, _ := CompilePattern("example.com")
	in := []catalog.FileDescriptor{{
		Name: "run-0h-oper-fc.grib2",
		URL:  "https://example.com/run-0h-oper-fc.grib2",
	}}
	if got := m.Apply(in); len(got) != 0 {
		t.Fatal("pattern must not match against the URL")
	}
}
