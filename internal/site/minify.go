package site

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	cssComment    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssSpace      = regexp.MustCompile(`\s+`)
	cssPunctSpace = regexp.MustCompile(`\s*([{}:;,>])\s*`)
	htmlComment   = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// Minify collapses whitespace in CSS, JS and HTML source. JS is only
// reduced line by line: indentation, blank lines and whole-line //
// comments go; string contents are never touched.
func Minify(name string, src []byte) []byte {
	switch strings.ToLower(path.Ext(name)) {
	case ".css":
		s := cssComment.ReplaceAllString(string(src), "")
		s = cssSpace.ReplaceAllString(s, " ")
		s = cssPunctSpace.ReplaceAllString(s, "$1")
		s = strings.ReplaceAll(s, ";}", "}")
		return []byte(strings.TrimSpace(s))
	case ".js":
		return []byte(joinLines(string(src), func(line string) bool {
			return strings.HasPrefix(line, "//")
		}))
	case ".html", ".htm":
		s := htmlComment.ReplaceAllString(string(src), "")
		return []byte(joinLines(s, func(string) bool { return false }))
	}
	return src
}

func joinLines(s string, drop func(string) bool) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || drop(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func minifyTree(root string) error {
	return walkFiles(root, func(rel string, info fs.FileInfo) error {
		switch strings.ToLower(path.Ext(rel)) {
		case ".css", ".js", ".html", ".htm":
		default:
			return nil
		}
		// vendored bundles are already minified
		if strings.HasSuffix(rel, ".min.js") {
			return nil
		}
		p := filepath.Join(root, filepath.FromSlash(rel))
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(p, Minify(rel, data), info.Mode().Perm())
	})
}
