package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/httpc"
)

// Common errors.
var (
	// ErrUnavailable indicates the listing endpoint could not be reached or
	// answered with an unexpected status.
	ErrUnavailable = errors.New("catalog: listing unavailable")

	// ErrNoData indicates the date publishes nothing for the requested
	// coordinates. It is a signal, not necessarily a failure; bulk callers
	// treat it as an empty result.
	ErrNoData = errors.New("catalog: no data published")
)

// Query selects one model run directory below a date.
type Query struct {
	Cycle      string // forecast cycle, e.g. "12z"
	Model      string // "ifs", "aifs-single"
	Resolution string // "0p25", "0p4"
	Stream     string // "oper", "enfo", "waef", "wave"
}

// DefaultQuery returns the store's most commonly published coordinates.
func DefaultQuery() Query {
	return Query{
		Cycle:      "12z",
		Model:      "ifs",
		Resolution: "0p25",
		Stream:     "oper",
	}
}

func (q Query) path(d Date) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s/", d, q.Cycle, q.Model, q.Resolution, q.Stream)
}

// String formats the query the way it appears in listing URLs.
func (q Query) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", q.Cycle, q.Model, q.Resolution, q.Stream)
}

// FileDescriptor is catalog-reported metadata about one remote artifact.
// Descriptors are produced only by Client and never modified afterwards.
type FileDescriptor struct {
	Name     string
	URL      string
	Size     int64     // 0 when the listing did not report a size
	Modified time.Time // zero when the listing did not report a timestamp
	Step     int       // forecast step hour parsed from the name, -1 if unknown
}

// Options configures a catalog Client.
type Options struct {
	// BaseURL is the root of the data store, e.g.
	// "https://data.ecmwf.int/forecasts/". Required.
	BaseURL string

	// Timeout bounds each listing request. Zero means no client-side bound
	// beyond the caller's context.
	Timeout time.Duration

	// MaxIdleConnsPerHost tunes the underlying transport.
	// Default: httpc.DefaultOptions().
	MaxIdleConnsPerHost int
}

// Client lists remote file sets for forecast dates. Each call is one network
// round trip; nothing is cached.
type Client struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
}

// NewClient creates a catalog client for the given store.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("catalog: base URL is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	hopts := httpc.DefaultOptions()
	if opts.MaxIdleConnsPerHost > 0 {
		hopts.MaxIdleConnsPerHost = opts.MaxIdleConnsPerHost
	}
	return &Client{
		base:    base,
		client:  httpc.New(hopts),
		timeout: opts.Timeout,
	}, nil
}

// listingRow matches one anchor row of the store's HTML index pages:
//
//	<a href="20250617120000-0h-oper-fc.grib2">...</a>  17-06-2025 13:02  123456  1
//
// Only GRIB, NetCDF and index artifacts are considered.
var listingRow = regexp.MustCompile(
	`(?i)<a href="([^"]+\.(?:grib2?|index|nc))"[^>]*>([^<]+)</a>\s+(\d{2}-\d{2}-\d{4}\s+\d{2}:\d{2})\s+(\d+)`)

// stepHour extracts the forecast step from names like "...-24h-oper-fc.grib2".
var stepHour = regexp.MustCompile(`-(\d+)h-`)

// cycleLink matches cycle subdirectories ("00z/", "12z/") on a date index page.
var cycleLink = regexp.MustCompile(`(?i)<a href="([^"/]*\d{1,2}z)/"`)

// List fetches the index page for one date and query and returns the
// descriptors it advertises, in page order. It returns ErrNoData when the
// directory is absent or empty, and ErrUnavailable on transport failures or
// unexpected statuses.
func (c *Client) List(ctx context.Context, d Date, q Query) ([]FileDescriptor, error) {
	dirURL := c.base.JoinPath(strings.Split(strings.TrimSuffix(q.path(d), "/"), "/")...)
	dirURL.Path += "/"

	body, err := c.fetch(ctx, dirURL.String())
	if err != nil {
		return nil, err
	}

	files := parseListing(body, dirURL)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w for %s/%s", ErrNoData, d, q)
	}
	return files, nil
}

// Cycles probes which forecast cycles a date publishes, e.g. ["00z" "12z"].
func (c *Client) Cycles(ctx context.Context, d Date) ([]string, error) {
	dirURL := c.base.JoinPath(d.String())
	dirURL.Path += "/"

	body, err := c.fetch(ctx, dirURL.String())
	if err != nil {
		return nil, err
	}

	var cycles []string
	seen := make(map[string]bool)
	for _, m := range cycleLink.FindAllStringSubmatch(body, -1) {
		cycle := m[1]
		if i := strings.LastIndex(cycle, "/"); i >= 0 {
			cycle = cycle[i+1:]
		}
		if !seen[cycle] {
			seen[cycle] = true
			cycles = append(cycles, cycle)
		}
	}
	if len(cycles) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, d)
	}
	return cycles, nil
}

// fetch retrieves one index page, mapping statuses onto the catalog errors.
func (c *Client) fetch(ctx context.Context, u string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNoData, u)
	}
	if err := httpc.CheckStatus(resp.StatusCode); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read listing: %v", ErrUnavailable, err)
	}
	return string(body), nil
}

// parseListing extracts descriptors from an index page. Rows that fail to
// parse cleanly are skipped rather than failing the whole listing.
func parseListing(body string, dir *url.URL) []FileDescriptor {
	var files []FileDescriptor
	for _, m := range listingRow.FindAllStringSubmatch(body, -1) {
		href, name, modified, size := m[1], strings.TrimSpace(m[2]), m[3], m[4]

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}

		fd := FileDescriptor{
			Name: name,
			URL:  dir.ResolveReference(ref).String(),
			Step: -1,
		}
		if n, err := strconv.ParseInt(size, 10, 64); err == nil {
			fd.Size = n
		}
		if t, err := time.Parse("02-01-2006 15:04", modified); err == nil {
			fd.Modified = t
		}
		if sm := stepHour.FindStringSubmatch(name); sm != nil {
			if h, err := strconv.Atoi(sm[1]); err == nil {
				fd.Step = h
			}
		}
		files = append(files, fd)
	}
	return files
}

// FileType reports the artifact family of a descriptor by extension.
func (fd FileDescriptor) FileType() string {
	switch {
	case strings.HasSuffix(fd.Name, ".grib"), strings.HasSuffix(fd.Name, ".grib2"):
		return "GRIB"
	case strings.HasSuffix(fd.Name, ".nc"), strings.HasSuffix(fd.Name, ".netcdf"):
		return "NetCDF"
	case strings.HasSuffix(fd.Name, ".index"), strings.HasSuffix(fd.Name, ".idx"):
		return "Index"
	default:
		return "Unknown"
	}
}
