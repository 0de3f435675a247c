package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// resolveGit locates the git executable. It always returns a usable name so
// the cloner can still be constructed; the error reports a missing binary.
func resolveGit(binary string) (string, error) {
	if binary == "" {
		binary = "git"
	}
	binary = expandHome(binary)
	path, err := exec.LookPath(binary)
	if err != nil {
		return binary, fmt.Errorf("locate %s: %w", binary, err)
	}
	return path, nil
}
