package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/testutils"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestListParsesListing(t *testing.T) {
	files := []testutils.ListingFile{
		{Name: "20250617120000-0h-oper-fc.grib2", Body: []byte("grib-zero")},
		{Name: "20250617120000-0h-oper-fc.index", Body: []byte("idx")},
		{Name: "20250617120000-24h-oper-fc.grib2", Body: []byte("grib-twentyfour")},
	}
	server := testutils.CatalogServer(t, "/20250617/12z/ifs/0p25/oper/", files)

	client, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	got, err := client.List(context.Background(), mustDate(t, "20250617"), DefaultQuery())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d descriptors, want 3", len(got))
	}

	first := got[0]
	if first.Name != "20250617120000-0h-oper-fc.grib2" {
		t.Errorf("Name = %q", first.Name)
	}
	wantURL := server.URL + "/20250617/12z/ifs/0p25/oper/20250617120000-0h-oper-fc.grib2"
	if first.URL != wantURL {
		t.Errorf("URL = %q, want %q", first.URL, wantURL)
	}
	if first.Size != int64(len("grib-zero")) {
		t.Errorf("Size = %d, want %d", first.Size, len("grib-zero"))
	}
	if first.Step != 0 {
		t.Errorf("Step = %d, want 0", first.Step)
	}
	if got[2].Step != 24 {
		t.Errorf("Step = %d, want 24", got[2].Step)
	}
	wantMod := time.Date(2025, 6, 17, 13, 2, 0, 0, time.UTC)
	if !first.Modified.Equal(wantMod) {
		t.Errorf("Modified = %v, want %v", first.Modified, wantMod)
	}
}

func TestListPreservesPageOrder(t *testing.T) {
	files := []testutils.ListingFile{
		{Name: "20250617120000-48h-oper-fc.grib2", Body: []byte("x")},
		{Name: "20250617120000-0h-oper-fc.grib2", Body: []byte("y")},
		{Name: "20250617120000-24h-oper-fc.grib2", Body: []byte("z")},
	}
	server := testutils.CatalogServer(t, "/20250617/12z/ifs/0p25/oper/", files)

	client, _ := NewClient(Options{BaseURL: server.URL})
	got, err := client.List(context.Background(), mustDate(t, "20250617"), DefaultQuery())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i, f := range files {
		if got[i].Name != f.Name {
			t.Errorf("got[%d] = %s, want %s", i, got[i].Name, f.Name)
		}
	}
}

func TestListSkipsForeignRows(t *testing.T) {
	listing := `<html><body><pre>
<a href="../">../</a>
<a href="README.txt">README.txt</a>       17-06-2025 13:02    10    1
<a href="20250617120000-0h-oper-fc.grib2">20250617120000-0h-oper-fc.grib2</a>       17-06-2025 13:02    42    2
</pre></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listing)
	}))
	defer server.Close()

	client, _ := NewClient(Options{BaseURL: server.URL})
	got, err := client.List(context.Background(), mustDate(t, "20250617"), DefaultQuery())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Name != "20250617120000-0h-oper-fc.grib2" {
		t.Fatalf("expected only the grib2 row, got %v", got)
	}
}

func TestListMissingDateIsNoData(t *testing.T) {
	server := testutils.CatalogServer(t, "/20250617/12z/ifs/0p25/oper/", nil)

	client, _ := NewClient(Options{BaseURL: server.URL})
	_, err := client.List(context.Background(), mustDate(t, "19990101"), DefaultQuery())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for missing directory, got %v", err)
	}
}

func TestListEmptyListingIsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><pre>\n</pre></body></html>")
	}))
	defer server.Close()

	client, _ := NewClient(Options{BaseURL: server.URL})
	_, err := client.List(context.Background(), mustDate(t, "20250617"), DefaultQuery())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for empty listing, got %v", err)
	}
}

func TestListServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := NewClient(Options{BaseURL: server.URL})
	_, err := client.List(context.Background(), mustDate(t, "20250617"), DefaultQuery())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestListConnectionRefusedIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client, _ := NewClient(Options{BaseURL: server.URL})
	_, err := client.List(context.Background(), mustDate(t, "20250617"), DefaultQuery())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestListHonorsTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client, _ := NewClient(Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := client.List(context.Background(), mustDate(t, "20250617"), DefaultQuery())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not honored, took %v", elapsed)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestCycles(t *testing.T) {
	listing := `<html><body><pre>
<a href="00z/">00z/</a>       17-06-2025 01:00    -    1
<a href="06z/">06z/</a>       17-06-2025 07:00    -    2
<a href="12z/">12z/</a>       17-06-2025 13:00    -    3
<a href="12z/">12z/</a>       17-06-2025 13:00    -    4
</pre></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/20250617/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, listing)
	}))
	defer server.Close()

	client, _ := NewClient(Options{BaseURL: server.URL})
	cycles, err := client.Cycles(context.Background(), mustDate(t, "20250617"))
	if err != nil {
		t.Fatalf("Cycles: %v", err)
	}
	want := []string{"00z", "06z", "12z"}
	if len(cycles) != len(want) {
		t.Fatalf("got %v, want %v", cycles, want)
	}
	for i := range want {
		if cycles[i] != want[i] {
			t.Errorf("cycles[%d] = %s, want %s", i, cycles[i], want[i])
		}
	}
}

func TestCyclesMissingDateIsNoData(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client, _ := NewClient(Options{BaseURL: server.URL})
	_, err := client.Cycles(context.Background(), mustDate(t, "20250617"))
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestFileType(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"run-0h-oper-fc.grib2", "GRIB"},
		{"run-0h-oper-fc.grib", "GRIB"},
		{"run-0h-oper-fc.index", "Index"},
		{"field.nc", "NetCDF"},
		{"notes.txt", "Unknown"},
	}
	for _, c := range cases {
		fd := FileDescriptor{Name: c.name}
		if got := fd.FileType(); got != c.want {
			t.Errorf("FileType(%s) = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestQueryString(t *testing.T) {
	if s := DefaultQuery().String(); s != "12z/ifs/0p25/oper" {
		t.Errorf("got %q", s)
	}
}
