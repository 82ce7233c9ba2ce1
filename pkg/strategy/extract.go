package strategy

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// promoteName is the transient name used while hoisting a single top-level
// directory, so a child with the same name as its parent cannot collide.
const promoteName = ".srcforge-promote"

// promoteSingleEntry normalizes a freshly extracted working directory: an
// archive that contained exactly one top-level directory has that
// directory's contents hoisted to the root. Zero entries means the archive
// was corrupt or mis-detected and is fatal. A lone non-directory entry is
// left where it is.
func promoteSingleEntry(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrEmptyArchive
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	tmp := filepath.Join(dir, promoteName)
	if err := os.Rename(filepath.Join(dir, entries[0].Name()), tmp); err != nil {
		return err
	}

	children, err := os.ReadDir(tmp)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := os.Rename(filepath.Join(tmp, child.Name()), filepath.Join(dir, child.Name())); err != nil {
			return err
		}
	}
	return os.Remove(tmp)
}

// moveFile renames src to dst, falling back to copy-and-delete when the
// cache root and working directory are on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// copyTree copies every entry under src into dst, preserving directory
// structure and file permission bits.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("cannot copy %s: unsupported file mode %v", path, info.Mode())
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

// removeMetadataDirs deletes every directory named name anywhere under root
// and prunes descent into it, so no version-control bookkeeping survives in
// the staged output.
func removeMetadataDirs(root, name string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == name && path != root {
			if err := os.RemoveAll(path); err != nil {
				return err
			}
			return fs.SkipDir
		}
		return nil
	})
}
