package source

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitCloner shells out to the git binary for shallow clones.
type GitCloner struct {
	Binary string
}

// NewGitCloner returns a cloner using binary ("" = "git" from PATH).
func NewGitCloner(binary string) *GitCloner {
	if binary == "" {
		binary = "git"
	}
	return &GitCloner{Binary: binary}
}

// Clone runs `git clone --depth 1`. Cancelling ctx kills the process.
func (g *GitCloner) Clone(ctx context.Context, url, dir string) error {
	cmd := exec.CommandContext(ctx, g.Binary, "clone", "--quiet", "--depth", "1", "--", url, dir)
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("git clone: %w", ctxErr)
		}
		return fmt.Errorf("git clone: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
