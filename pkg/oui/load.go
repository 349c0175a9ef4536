package oui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"
)

const (
	// DefaultURL is the IEEE MA-L registry
	DefaultURL             = "https://standards-oui.ieee.org/oui/oui.txt"
	DefaultDownloadTimeout = 30 * time.Second
)

// LoadOptions controls where the vendor table comes from.
type LoadOptions struct {
	// Path of the cached table. Required.
	Path string
	// Refresh downloads the table even when a cached copy exists.
	Refresh bool
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

// Load parses the cached table at opts.Path, downloading it first when it
// is missing or a refresh was requested.
func Load(ctx context.Context, opts LoadOptions) (*Table, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("no vendor table path given")
	}

	if opts.Refresh || !fileutil.FileExists(opts.Path) {
		if err := download(ctx, opts); err != nil {
			return nil, err
		}
	} else {
		gologger.Verbose().Msgf("Using cached vendor table %s", opts.Path)
	}

	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open vendor table: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse vendor table %s: %w", opts.Path, err)
	}
	gologger.Verbose().Msgf("Loaded %d vendor prefixes", table.Len())
	return table, nil
}

func download(ctx context.Context, opts LoadOptions) error {
	url := opts.URL
	if url == "" {
		url = DefaultURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gologger.Info().Msgf("Downloading vendor table from %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("could not download vendor table: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("could not download vendor table: unexpected status %s", resp.Status)
	}

	if dir := filepath.Dir(opts.Path); !fileutil.FolderExists(dir) {
		if err := fileutil.CreateFolder(dir); err != nil {
			return fmt.Errorf("could not create cache directory: %w", err)
		}
	}

	// write to a sibling file so a failed transfer never replaces a good cache
	tmp := opts.Path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("could not create vendor table: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("could not write vendor table: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("could not write vendor table: %w", err)
	}
	if err := os.Rename(tmp, opts.Path); err != nil {
		return fmt.Errorf("could not save vendor table: %w", err)
	}
	gologger.Info().Msgf("Saved vendor table to %s", opts.Path)
	return nil
}
