package watch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
)

// HashFile computes a SHA-256 hash of the file contents
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashContent computes a SHA-256 hash of the given content
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Incremental remembers the content hash of each document it has seen, so a
// save that does not change the bytes does not trigger re-emission
type Incremental struct {
	mu     sync.Mutex
	hashes map[string]string
}

// NewIncremental creates an empty tracker
func NewIncremental() *Incremental {
	return &Incremental{hashes: make(map[string]string)}
}

// Changed returns the subset of files whose content differs from the last
// call, recording their new hashes. Files that no longer exist are skipped;
// editors often delete and recreate on save, and the recreate arrives as its
// own event.
func (ic *Incremental) Changed(files []string) ([]string, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	var changed []string
	for _, f := range files {
		hash, err := HashFile(f)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to hash %s: %w", f, err)
		}
		if ic.hashes[f] == hash {
			continue
		}
		ic.hashes[f] = hash
		changed = append(changed, f)
	}
	return changed, nil
}

// Forget drops the recorded hash of file so the next Changed reports it
func (ic *Incremental) Forget(file string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	delete(ic.hashes, file)
}
