package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// HashBlockSize is the read size used while folding a file into its digest.
const HashBlockSize = 4096

// ContentHash is the hex-encoded MD5 digest of a file's full byte content.
// It identifies content, not files: name, timestamps and permissions never
// contribute to it.
type ContentHash string

// HashReader folds r into an MD5 digest one block at a time.
func HashReader(r io.Reader) (ContentHash, error) {
	h := md5.New()
	buf := make([]byte, HashBlockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return ContentHash(hex.EncodeToString(h.Sum(nil))), nil
}

// HashFile computes the content hash of the file at path.
func HashFile(fs afero.Fs, path string) (ContentHash, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	defer f.Close()

	sum, err := HashReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return sum, nil
}
