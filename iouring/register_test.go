package iouring_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pawelgaczynski/uringcp/iouring"
	. "github.com/stretchr/testify/require"
)

func TestRegisterBuffersOnce(t *testing.T) {
	ring := createTestRing(t, 4)

	buffers := [][]byte{make([]byte, 4096), make([]byte, 4096)}
	NoError(t, ring.RegisterBuffers(buffers))
	ErrorIs(t, ring.RegisterBuffers(buffers), iouring.ErrBuffersRegistered)
}

func TestRegisterBuffersRejectsEmpty(t *testing.T) {
	ring := createTestRing(t, 4)

	ErrorIs(t, ring.RegisterBuffers(nil), iouring.ErrNoBuffers)
	ErrorIs(t, ring.RegisterBuffers([][]byte{{}}), iouring.ErrNoBuffers)
}

func TestFixedReadWrite(t *testing.T) {
	ring := createTestRing(t, 4)

	dir := t.TempDir()
	data := []byte("fixed buffers are addressed by index")
	srcPath := filepath.Join(dir, "src")
	NoError(t, os.WriteFile(srcPath, data, 0o644))

	src, err := os.Open(srcPath)
	NoError(t, err)
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, "dst"))
	NoError(t, err)
	defer dst.Close()

	buffers := [][]byte{make([]byte, 4096), make([]byte, 4096)}
	NoError(t, ring.RegisterBuffers(buffers))

	entry, err := ring.GetSQE()
	NoError(t, err)
	entry.PrepareReadFixed(int(src.Fd()), buffers[1][:len(data)], 0, 1)
	entry.UserData = 1

	cqe, err := ring.WaitCQE()
	NoError(t, err)
	Equal(t, uint64(1), cqe.UserData)
	Equal(t, int32(len(data)), cqe.Res)
	Equal(t, data, buffers[1][:len(data)])

	entry, err = ring.GetSQE()
	NoError(t, err)
	entry.PrepareWriteFixed(int(dst.Fd()), buffers[1][:len(data)], 100, 1)
	entry.UserData = 2

	cqe, err = ring.WaitCQE()
	NoError(t, err)
	Equal(t, uint64(2), cqe.UserData)
	Equal(t, int32(len(data)), cqe.Res)

	written, err := os.ReadFile(dst.Name())
	NoError(t, err)
	Len(t, written, 100+len(data))
	Equal(t, data, written[100:])
}
