//go:build !linux

package recorder

import "os"

func datasync(f *os.File) error {
	return f.Sync()
}
