package util

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// EnsureParentDir creates the directory holding filePath if missing
func EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	return errors.Wrapf(os.MkdirAll(dir, os.ModePerm), "failed to create %s", dir)
}

// WriteFileAtomic writes content to a temporary file next to savePath
// and renames it, so readers never observe a partially written file
func WriteFileAtomic(savePath string, content []byte) error {
	if err := EnsureParentDir(savePath); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(savePath), filepath.Base(savePath)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file for %s", savePath)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", tmp.Name())
	}
	return errors.Wrapf(os.Rename(tmp.Name(), savePath), "failed to move %s to %s", tmp.Name(), savePath)
}

// AppendToFile appends every string as a new line of the file
func AppendToFile(savePath string, content ...string) error {
	f, err := os.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", savePath)
	}

	defer f.Close()

	for _, s := range content {
		if _, err = f.WriteString(s + "\n"); err != nil {
			return errors.Wrapf(err, "failed to append to %s", savePath)
		}
	}
	return nil
}
