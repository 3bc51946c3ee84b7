package uringcp

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	data := []byte("same bytes on both sides")
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	NoError(t, os.WriteFile(src, data, 0o600))
	NoError(t, os.WriteFile(dst, data, 0o600))

	result, err := Verify(src, dst)
	NoError(t, err)

	sum := blake3.Sum256(data)
	Equal(t, result.Source, result.Destination)
	Len(t, result.Source, 2*len(sum))
}

func TestVerifyMismatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	NoError(t, os.WriteFile(src, []byte("source"), 0o600))
	NoError(t, os.WriteFile(dst, []byte("sourcf"), 0o600))

	_, err := Verify(src, dst)
	ErrorIs(t, err, ErrVerifyMismatch)
}

func TestVerifyMissingFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	NoError(t, os.WriteFile(src, []byte("source"), 0o600))

	_, err := Verify(src, filepath.Join(dir, "missing"))
	ErrorIs(t, err, os.ErrNotExist)
}
