package order

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrSourceDenied is returned for paths or URLs a Source refuses to read
var ErrSourceDenied = errors.New("order source not allowed")

const (
	defaultFetchTimeout = 30 * time.Second
	maxDocumentSize     = 4 << 20
)

// Source reads order documents from files and http(s) URLs
type Source struct {
	// Root confines file paths to a directory; relative paths resolve against it.
	// Empty allows any path.
	Root      string
	DenyFiles bool
	DenyURLs  bool
	Client    *http.Client
}

// Load reads and parses an order
func (s Source) Load(pathOrURL string) (*Order, error) {
	data, err := s.Read(pathOrURL)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Read returns the raw document behind a path or URL
func (s Source) Read(pathOrURL string) ([]byte, error) {
	if isURL(pathOrURL) {
		return s.fetch(pathOrURL)
	}
	return s.readFile(pathOrURL)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (s Source) readFile(path string) ([]byte, error) {
	if s.DenyFiles {
		return nil, fmt.Errorf("%w: file paths are disabled", ErrSourceDenied)
	}

	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read order file: %w", err)
	}
	return data, nil
}

// resolve applies Root to path
func (s Source) resolve(path string) (string, error) {
	if s.Root == "" {
		return path, nil
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("invalid order root: %w", err)
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrSourceDenied, path, s.Root)
	}
	return target, nil
}

func (s Source) fetch(url string) ([]byte, error) {
	if s.DenyURLs {
		return nil, fmt.Errorf("%w: order URLs are disabled", ErrSourceDenied)
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order from URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch order: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read order from URL: %w", err)
	}
	return data, nil
}
