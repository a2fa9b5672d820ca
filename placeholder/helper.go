package placeholder

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"
)

// helpers returns the functions available to derived expressions. A base
// placeholder with the same name as a namespace shadows it.
//
//	bin:  path.join(home, "bin")
//	path: pathlist.prefix(path, bin)
func helpers() map[string]any {
	return map[string]any{
		"path": map[string]any{
			"abs":  pathAbs,
			"base": filepath.Base,
			"dir":  filepath.Dir,
			"ext":  filepath.Ext,
			"join": filepath.Join,
			"rel":  pathRel,
		},
		"pathlist": map[string]any{
			"prefix": pathListPrefix,
		},
	}
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return filepath.Join(from, to)
	}

	return p
}

// pathListPrefix prepends items to the PATH-like list, removing any
// duplicates already in it.
func pathListPrefix(list string, items ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
	).String()
}
