package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kolah/truffle/internal/model"
	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
)

// ErrUnsupportedVersion is returned for documents that are not OpenAPI 3.x.
var ErrUnsupportedVersion = errors.New("unsupported OpenAPI version")

// LoadError reports a failure to obtain or parse the spec document.
type LoadError struct {
	Source     string
	StatusCode int // non-zero when the fetch got a non-success HTTP status
	Err        error
}

func (e *LoadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("loading spec from %s: HTTP %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("loading spec from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type Result struct {
	Spec     *model.Spec
	Document libopenapi.Document
	Version  string
	Warnings []string
	Source   string
}

// Load reads the document at source, which is either a local file path or an
// http(s) URL.
func Load(ctx context.Context, source string, client *http.Client) (*Result, error) {
	if IsRemote(source) {
		return LoadURL(ctx, source, client)
	}
	return LoadFile(source)
}

// IsRemote reports whether source names an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("reading spec file: %w", err)}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("resolving absolute path: %w", err)}
	}

	config := documentConfig()
	config.BasePath = filepath.Dir(absPath)

	result, err := loadWithConfig(data, config)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	result.Source = path
	return result, nil
}

func LoadURL(ctx context.Context, rawURL string, client *http.Client) (*Result, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, &LoadError{Source: rawURL, Err: fmt.Errorf("parsing spec URL: %w", err)}
	}

	data, err := Fetch(ctx, rawURL, client)
	if err != nil {
		return nil, err
	}

	config := documentConfig()
	config.BaseURL = base

	result, err := loadWithConfig(data, config)
	if err != nil {
		return nil, &LoadError{Source: rawURL, Err: err}
	}
	result.Source = rawURL
	return result, nil
}

// LoadBytes parses an in-memory document.
func LoadBytes(data []byte) (*Result, error) {
	return loadWithConfig(data, documentConfig())
}

// Fetch downloads the spec document. Any status other than 200 is a LoadError.
func Fetch(ctx context.Context, rawURL string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &LoadError{Source: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/yaml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: rawURL, Err: fmt.Errorf("fetching spec: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{Source: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{Source: rawURL, Err: fmt.Errorf("reading spec: %w", err)}
	}
	return data, nil
}

func documentConfig() *datamodel.DocumentConfiguration {
	return &datamodel.DocumentConfiguration{
		IgnorePolymorphicCircularReferences: true,
		IgnoreArrayCircularReferences:       true,
	}
}

func loadWithConfig(data []byte, config *datamodel.DocumentConfiguration) (*Result, error) {
	doc, err := libopenapi.NewDocumentWithConfiguration(data, config)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("%w: %s (only 3.x supported)", ErrUnsupportedVersion, version)
	}

	info := doc.GetSpecInfo()
	if info == nil || info.RootNode == nil {
		return nil, errors.New("parsing OpenAPI document: no root node")
	}

	spec, err := Transform(info.RootNode)
	if err != nil {
		return nil, fmt.Errorf("building spec model: %w", err)
	}

	result := &Result{
		Spec:     spec,
		Document: doc,
		Version:  version,
	}

	if !strings.HasPrefix(version, "3.0") {
		result.Warnings = append(result.Warnings, fmt.Sprintf("OpenAPI %s detected; documents are interpreted with 3.0 semantics", version))
	}

	return result, nil
}
