package storage

import (
	"path"
	"strings"
)

// NormalizePath canonicalizes a path into the form every Store expects:
//
//   - the leading separator is stripped (paths are root-relative)
//   - "." and ".." segments are resolved lexically
//   - repeated separators are collapsed
//   - a trailing separator is preserved exactly when present in the input,
//     marking the path as a directory
//   - glob metacharacters ('*', '?', '[', '{') are never altered
//
// Empty input and "." normalize to the empty string, which denotes the root.
// ".." segments that would climb above the root are clamped at the root, so
// "../etc" normalizes to "etc".
//
// NormalizePath is idempotent: normalizing an already-normalized path is a
// no-op.
func NormalizePath(p string) string {
	isDir := strings.HasSuffix(p, "/")

	cleaned := path.Clean(p)
	if cleaned == "." {
		cleaned = ""
	}

	cleaned = strings.TrimPrefix(cleaned, "/")

	// Clamp ".." runs that survived Clean because they would escape the
	// root.
	for {
		if cleaned == ".." {
			cleaned = ""
			break
		}

		rest, found := strings.CutPrefix(cleaned, "../")
		if !found {
			break
		}

		cleaned = rest
	}

	if isDir {
		if cleaned == "" {
			return "/"
		}

		return cleaned + "/"
	}

	return cleaned
}

// JoinPath joins a base path and a relative path, keeping the result in
// normalized form. The relative path's trailing separator, if any, survives
// the join.
func JoinPath(base, rel string) string {
	if base == "" {
		return rel
	}
	if rel == "" {
		return base
	}

	isDir := strings.HasSuffix(rel, "/")

	joined := path.Join(strings.TrimSuffix(base, "/"), rel)
	if isDir {
		joined += "/"
	}

	return joined
}

// ParentPath returns the parent directory of a normalized path, without a
// trailing separator. Root-level paths have an empty parent.
func ParentPath(p string) string {
	trimmed := strings.TrimSuffix(p, "/")
	if trimmed == "" {
		return ""
	}

	parent := path.Dir(trimmed)
	if parent == "." || parent == "/" {
		return ""
	}

	return parent
}

// RelPath strips prefix from p, returning the remainder and whether the
// strip applied. The prefix may be spelled with or without its trailing
// separator.
func RelPath(prefix, p string) (string, bool) {
	if prefix == "" {
		return p, true
	}

	prefix = strings.TrimSuffix(prefix, "/")

	if p == prefix {
		return "", true
	}

	rest, found := strings.CutPrefix(p, prefix+"/")
	if !found {
		return p, false
	}

	return rest, true
}

// EnsureDirPath returns the directory spelling of a path (trailing
// separator present). The root is spelled "".
func EnsureDirPath(p string) string {
	if p == "" || p == "/" {
		return ""
	}

	if strings.HasSuffix(p, "/") {
		return p
	}

	return p + "/"
}
