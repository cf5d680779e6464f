package main

import (
	"fmt"
	"os"

	"github.com/creack/pty"

	"github.com/kc9wav/linkkit/internal/linklog"
)

// openConsolePTY creates a pseudo-terminal pair and symlinks the slave side
// at linkPath so another program can attach to the console the same way
// the source's kisspt_open_pt exposed a KISS TNC pseudo-terminal. It
// returns the master end, which the caller drives like any other
// io.ReadWriteCloser.
func openConsolePTY(linkPath string) (*os.File, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("pty: open: %w", err)
	}
	defer slave.Close()

	if linkPath != "" {
		_ = os.Remove(linkPath)
		if err := os.Symlink(slave.Name(), linkPath); err != nil {
			linklog.Warn("could not symlink pty slave", "path", linkPath, "err", err)
		}
	}

	linklog.Info("console pty ready", "slave", slave.Name())
	return master, nil
}
