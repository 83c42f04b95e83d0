// Package source opens the input document named on the command line: a
// local path, a file:// URL or an http(s):// URL. Remote documents are read
// fully into memory since the PDF reader needs random access.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrUnsupportedScheme is returned for "scheme://" locations other than
// file, http and https that do not name an existing file.
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// UserAgent is sent with every HTTP request. Some servers refuse
// downloads without a browser agent.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/71.0.3578.80 Safari/537.36"

// DialTimeout bounds connection setup for URL input. The transfer itself
// is bounded only by ctx.
const DialTimeout = 5 * time.Second

// Document is an opened input. The caller closes it.
type Document interface {
	io.ReadSeeker
	io.Closer
}

type memDocument struct {
	*bytes.Reader
}

func (memDocument) Close() error { return nil }

var defaultClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: DialTimeout}).DialContext,
		TLSHandshakeTimeout: DialTimeout,
	},
}

// MaxDownloadSize is the default limit on the size of a remote document.
const MaxDownloadSize = 512 << 20

// ErrTooLarge is returned for downloads over the size limit.
var ErrTooLarge = errors.New("document too large")

// Opener opens locations. The zero value uses a client with DialTimeout
// and reads at most MaxDownloadSize bytes.
type Opener struct {
	Client  *http.Client
	MaxSize int64
}

// Open opens location with the default Opener.
func Open(ctx context.Context, location string) (Document, error) {
	return Opener{}.Open(ctx, location)
}

// Open returns the document at location. Anything that is not a file,
// http or https URL is a file path, so "C:\\doc.pdf" and "notes:v2.pdf"
// open as files.
func (o Opener) Open(ctx context.Context, location string) (Document, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return openFile(location)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return openFile(path)
	case "http", "https":
		return o.fetch(ctx, u.String())
	}
	doc, err := openFile(location)
	if errors.Is(err, fs.ErrNotExist) && strings.Contains(location, "://") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	return doc, err
}

func openFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (o Opener) fetch(ctx context.Context, rawURL string) (Document, error) {
	client := o.Client
	if client == nil {
		client = defaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: %s", rawURL, resp.Status)
	}
	limit := o.MaxSize
	if limit <= 0 {
		limit = MaxDownloadSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("get %s: %w: over %d bytes", rawURL, ErrTooLarge, limit)
	}
	if err := checkDownload(rawURL, data); err != nil {
		return nil, err
	}
	return memDocument{bytes.NewReader(data)}, nil
}
