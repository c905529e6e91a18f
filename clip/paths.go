package clip

import (
	"fmt"
	"path/filepath"
)

// OutputPath resolves the clip path to an absolute path. Relative paths are
// taken from the working directory, matching how the clip has always been
// written next to where the tool runs.
func OutputPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("clip path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve clip path: %w", err)
	}
	return abs, nil
}
