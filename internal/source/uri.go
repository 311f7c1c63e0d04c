package source

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// URI identifies a document. File URIs are kept in the canonical form
// produced by URIFromPath so that map lookups agree with client URIs.
type URI string

// URIFromPath converts a filesystem path into an absolute file URI.
func URIFromPath(p string) URI {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return URI(u.String())
}

// ParseURI canonicalizes a client-provided URI. Non-file URIs are returned as is.
func ParseURI(raw string) URI {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return URI(raw)
	}
	switch parsed.Scheme {
	case "":
		return URIFromPath(raw)
	case "file":
		p := parsed.Path
		if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
			// file:///C:/x -> C:/x
			p = strings.ToUpper(p[1:2]) + p[2:]
		}
		return URIFromPath(filepath.FromSlash(p))
	default:
		return URI(raw)
	}
}

// IsFile reports whether u uses the file scheme.
func (u URI) IsFile() bool {
	return strings.HasPrefix(string(u), "file:")
}

// Path returns the filesystem path for file URIs and "" otherwise.
func (u URI) Path() string {
	if !u.IsFile() {
		return ""
	}
	parsed, err := url.Parse(string(u))
	if err != nil {
		return ""
	}
	return filepath.FromSlash(parsed.Path)
}

func (u URI) String() string {
	return string(u)
}

// Base returns the last element of the URI path.
func (u URI) Base() string {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return path.Base(string(u))
	}
	return path.Base(parsed.Path)
}

// Ext returns the lowercase extension including the dot.
func (u URI) Ext() string {
	return strings.ToLower(path.Ext(u.Base()))
}

// Stem returns the base name without its extension.
func (u URI) Stem() string {
	base := u.Base()
	return strings.TrimSuffix(base, path.Ext(base))
}

// Dir returns the URI of the containing directory.
func (u URI) Dir() URI {
	if u.IsFile() {
		return URIFromPath(filepath.Dir(u.Path()))
	}
	parsed, err := url.Parse(string(u))
	if err != nil {
		return u
	}
	parsed.Path = path.Dir(parsed.Path)
	return URI(parsed.String())
}

// Join resolves rel against the directory u. Absolute paths win.
func (u URI) Join(rel string) URI {
	if rel == "" {
		return u
	}
	if u.IsFile() {
		if filepath.IsAbs(rel) {
			return URIFromPath(rel)
		}
		return URIFromPath(filepath.Join(u.Path(), filepath.FromSlash(rel)))
	}
	parsed, err := url.Parse(string(u))
	if err != nil {
		return u
	}
	parsed.Path = path.Join(parsed.Path, rel)
	return URI(parsed.String())
}

// Within reports whether u lies under the directory dir.
func (u URI) Within(dir URI) bool {
	if dir == "" {
		return false
	}
	prefix := strings.TrimSuffix(string(dir), "/") + "/"
	return u == dir || strings.HasPrefix(string(u), prefix)
}
