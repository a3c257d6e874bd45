package gitignore

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RepoExcludeFile returns the path of <root>/.git/info/exclude when it
// exists, or "".
func RepoExcludeFile(root string) string {
	path := filepath.Join(root, ".git", "info", "exclude")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// GlobalIgnoreFile resolves the user's global git ignore file: the
// core.excludesFile git setting when configured, otherwise the XDG default
// ~/.config/git/ignore, otherwise ~/.gitignore_global. Returns "" when none
// of them exists.
func GlobalIgnoreFile() string {
	if out, err := exec.Command("git", "config", "--get", "core.excludesFile").Output(); err == nil {
		path := strings.TrimSpace(string(out))
		path = expandHome(path)
		if path != "" {
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	candidates := []string{
		filepath.Join(home, ".config", "git", "ignore"),
		filepath.Join(home, ".gitignore_global"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
