package distro

import (
	"bufio"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

// indexed lists the extensions worth resolving from the distribution.
var indexed = map[string]struct{}{
	".sty": {},
	".cls": {},
	".bib": {},
}

func wanted(name string) bool {
	_, ok := indexed[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ParseLsR reads an ls-R database rooted at root. Directory headers end
// with ':' and are relative to root; the names below them are the entries.
// The first occurrence of a name wins, matching kpathsea's search order.
func ParseLsR(r io.Reader, root string, into map[string]string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	dir := root
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case line == "" || strings.HasPrefix(line, "%"):
			continue
		case strings.HasSuffix(line, ":"):
			rel := strings.TrimSuffix(line, ":")
			if filepath.IsAbs(rel) {
				dir = filepath.FromSlash(rel)
			} else {
				dir = filepath.Join(root, filepath.FromSlash(rel))
			}
		default:
			if !wanted(line) {
				continue
			}
			if _, seen := into[line]; !seen {
				into[line] = filepath.Join(dir, line)
			}
		}
	}
	return sc.Err()
}

// walkRoot indexes a root that has no ls-R database.
func walkRoot(root string, into map[string]string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() || !wanted(d.Name()) {
			return nil
		}
		if _, seen := into[d.Name()]; !seen {
			into[d.Name()] = path
		}
		return nil
	})
}
