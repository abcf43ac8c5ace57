package internal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/spf13/afero"
)

// MoveFile moves src to dest, refusing to replace anything already at dest.
// Moves across filesystems fall back to copy, sync, rename, remove.
func MoveFile(fsys afero.Fs, src, dest string) error {
	if _, err := fsys.Stat(dest); err == nil {
		return fmt.Errorf("refusing to overwrite %s: %w", dest, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", dest, err)
	}

	err := fsys.Rename(src, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move %s to %s: %w", src, dest, err)
	}

	if err := copyFileAtomic(fsys, src, dest); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dest, err)
	}
	if err := fsys.Remove(src); err != nil {
		return fmt.Errorf("copied %s but failed to remove source: %w", src, err)
	}
	return nil
}

// copyFileAtomic copies a file atomically (copy temp → rename)
func copyFileAtomic(fsys afero.Fs, src, dest string) error {
	tmp := dest + ".tmp"
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	mode := os.FileMode(0644)
	if info, err := in.Stat(); err == nil {
		mode = info.Mode().Perm()
	}

	out, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		fsys.Remove(tmp)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		fsys.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		fsys.Remove(tmp)
		return err
	}

	if err := fsys.Rename(tmp, dest); err != nil {
		fsys.Remove(tmp)
		return err
	}
	return nil
}
