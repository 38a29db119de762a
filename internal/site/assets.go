package site

import (
	"embed"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// BaseDir holds the runtime shared by every template. It is copied to a
// site's lib/ directory.
const BaseDir = "_base"

//go:embed all:assets
var embedded embed.FS

// Builtin returns the compiled-in asset tree: _base plus one directory per
// built-in template.
func Builtin() fs.FS {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Assets resolves template directories, preferring an on-disk templates
// directory over the compiled-in tree.
type Assets struct {
	builtin fs.FS
	dir     string
}

func NewAssets(templatesDir string) *Assets {
	return &Assets{builtin: Builtin(), dir: templatesDir}
}

// Template returns the file tree of template id, or false when neither the
// templates directory nor the built-in tree has it.
func (a *Assets) Template(id string) (fs.FS, bool) {
	if a.dir != "" {
		if info, err := os.Stat(filepath.Join(a.dir, id)); err == nil && info.IsDir() {
			return os.DirFS(filepath.Join(a.dir, id)), true
		}
	}
	if info, err := fs.Stat(a.builtin, id); err == nil && info.IsDir() {
		sub, err := fs.Sub(a.builtin, id)
		return sub, err == nil
	}
	return nil, false
}

func (a *Assets) Base() fs.FS {
	base, _ := a.Template(BaseDir)
	return base
}

// copyTree writes every file of src under dst and returns the file count.
func copyTree(src fs.FS, dst string) (int, error) {
	n := 0
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := copyFile(src, p, target); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

func copyFile(src fs.FS, name, target string) error {
	in, err := src.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return !errors.Is(err, fs.ErrNotExist)
}

// walkFiles calls fn for every regular file under root with its path
// relative to root, slash separated.
func walkFiles(root string, fn func(rel string, info fs.FileInfo) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return fn(path.Clean(filepath.ToSlash(rel)), info)
	})
}
