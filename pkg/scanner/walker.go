package scanner

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
)

// skipDirs are never descended into: version control, dependency managers and
// our own state directory.
var skipDirs = map[string]bool{
	".git":             true,
	".svn":             true,
	".hg":              true,
	"node_modules":     true,
	"vendor":           true,
	"bower_components": true,
	".apikb":           true,
}

// FindFiles walks root recursively and returns the absolute paths of files
// whose base name matches pattern. The glob syntax is '*' (any run) and '?'
// (single character), anchored to the whole filename; there is no brace
// expansion and no '**'.
func FindFiles(root, pattern string) ([]string, error) {
	re, err := globToRegexp(pattern)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if re.MatchString(d.Name()) {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			files = append(files, abs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func globToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, ch := range pattern {
		switch ch {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
