package logging

import "path/filepath"

// LogPath returns the log file path under the given beetle home directory.
func LogPath(home string) string {
	return filepath.Join(home, "logs", "beetle.log")
}
