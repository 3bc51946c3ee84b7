package uringcp

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/alitto/pond"
	"github.com/zeebo/blake3"
)

const hashBufferSize = 32 * 1024

// VerifyResult holds the hex encoded BLAKE3 digests of both files.
type VerifyResult struct {
	Source      string
	Destination string
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	buf := make([]byte, hashBufferSize)
	if _, err = io.CopyBuffer(hasher, file, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verify hashes src and dst in parallel and reports ErrVerifyMismatch when the
// digests differ.
func Verify(src, dst string) (VerifyResult, error) {
	var (
		result         VerifyResult
		srcErr, dstErr error
	)

	pool := pond.New(2, 2)
	pool.Submit(func() {
		result.Source, srcErr = hashFile(src)
	})
	pool.Submit(func() {
		result.Destination, dstErr = hashFile(dst)
	})
	pool.StopAndWait()

	if srcErr != nil {
		return result, srcErr
	}
	if dstErr != nil {
		return result, dstErr
	}
	if result.Source != result.Destination {
		return result, fmt.Errorf("%w, source: %s, destination: %s", ErrVerifyMismatch, result.Source, result.Destination)
	}

	return result, nil
}
