package registry

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/marmos91/ferry/pkg/storage"
)

// Location is a parsed storage URI.
//
// Accepted forms:
//
//	mem://path/in/store              ephemeral in-memory store
//	file:///tmp/data/src.txt         local filesystem (rooted at /)
//	s3://bucket/backup/2024          bucket from the host, path inside it
//	badger:///var/db#path/in/store   URI path locates the database,
//	                                 fragment is the path inside the store
//	profile://name/path/in/store     resolve through a named profile
//
// Query parameters become backend options ("s3://bucket/x?region=eu-west-1"),
// and for profile URIs they override the profile's stored options.
type Location struct {
	// Scheme selects the backend factory (or "profile").
	Scheme string

	// Host is the URI authority: the bucket for s3, the profile name for
	// profile URIs, unused otherwise.
	Host string

	// Path is the URI path with its leading separator trimmed.
	Path string

	// Fragment is the explicit in-store path, for schemes whose URI path
	// locates something on the local machine instead.
	Fragment string

	// Options holds the query parameters as backend options.
	Options map[string]any
}

// ParseLocation parses a storage URI. A string without a scheme is
// rejected; callers that want bare filesystem paths prepend "file://".
func ParseLocation(raw string) (*Location, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", raw, storage.ErrUnexpected)
	}

	if parsed.Scheme == "" {
		return nil, fmt.Errorf("location %q has no scheme (try file://%s): %w",
			raw, raw, storage.ErrUnsupported)
	}

	options := make(map[string]any)
	for key, values := range parsed.Query() {
		if len(values) > 0 {
			options[key] = values[len(values)-1]
		}
	}

	return &Location{
		Scheme:   parsed.Scheme,
		Host:     parsed.Host,
		Path:     strings.TrimPrefix(parsed.Path, "/"),
		Fragment: parsed.Fragment,
		Options:  options,
	}, nil
}

// BackendOptions returns the option map for the location's factory,
// folding the URI parts each scheme encodes positionally into their named
// options.
func (l *Location) BackendOptions() map[string]any {
	options := make(map[string]any, len(l.Options)+1)
	for k, v := range l.Options {
		options[k] = v
	}

	switch normalizeScheme(l.Scheme) {
	case "file":
		// The store is rooted at the filesystem root; the URI path is the
		// operation path below it.
		if _, ok := options["path"]; !ok {
			options["path"] = "/"
		}
	case "s3":
		if _, ok := options["bucket"]; !ok {
			options["bucket"] = l.Host
		}
	case "badger":
		if _, ok := options["path"]; !ok {
			options["path"] = "/" + l.Path
		}
	}

	return options
}

// StorePath returns the operation path inside the opened store.
func (l *Location) StorePath() string {
	switch normalizeScheme(l.Scheme) {
	case "badger":
		// The URI path located the database; the in-store path rides in
		// the fragment.
		return l.Fragment
	case "mem":
		// The authority carries no meaning for an in-memory store; fold
		// it back into the path so "mem://staging/f.txt" means
		// "staging/f.txt".
		if l.Fragment != "" {
			return l.Fragment
		}
		if l.Host != "" && l.Path != "" {
			return l.Host + "/" + l.Path
		}
		if l.Host != "" {
			return l.Host
		}

		return l.Path
	default:
		if l.Fragment != "" {
			return l.Fragment
		}

		return l.Path
	}
}
