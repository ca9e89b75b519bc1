package common

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TreeHash folds the content hash of every regular file under path into a
// single digest, used to tag images so unchanged trees reuse the same tag.
func TreeHash(path string) (string, error) {
	h := sha256.New()

	err := filepath.Walk(path,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() || info.Mode()&os.ModeSymlink == os.ModeSymlink {
				return nil
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			if _, err := io.Copy(h, f); err != nil {
				return err
			}

			return nil
		})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil))[:16], nil
}
