// Package library finds candidate source videos under a directory tree and
// picks one at random.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotDirectory is returned when the scan root is missing or is not a directory.
	ErrNotDirectory = errors.New("library: not a directory")
	// ErrNoVideos is returned by Pick when there is nothing to choose from.
	ErrNoVideos = errors.New("library: no video files found")
)

// Video is a candidate source file.
type Video struct {
	Path    string
	RelPath string
	Size    int64
	ModTime time.Time
}

// Scan walks root recursively and returns the files whose name ends with one
// of suffixes. Directories listed in exclude are skipped; relative entries are
// resolved against root. Results are sorted by relative path.
func Scan(root string, suffixes, exclude []string) ([]Video, error) {
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	excluded := excludedDirs(root, exclude)

	videos := make([]Video, 0, 64)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries below the root are skipped.
			if path == root {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			return nil
		}

		if !MatchesSuffix(d.Name(), suffixes) {
			return nil
		}

		fi, ok := regularFile(path, d)
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		videos = append(videos, Video{
			Path:    path,
			RelPath: rel,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(videos, func(i, j int) bool { return videos[i].RelPath < videos[j].RelPath })
	return videos, nil
}

// MatchesSuffix reports whether name ends with any of suffixes, ignoring case.
func MatchesSuffix(name string, suffixes []string) bool {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Pick returns a uniformly chosen video and its index.
func Pick(rng *rand.Rand, videos []Video) (int, Video, error) {
	if len(videos) == 0 {
		return 0, Video{}, ErrNoVideos
	}
	i := rng.IntN(len(videos))
	return i, videos[i], nil
}

// regularFile returns the file info for a regular file or a symlink to one.
// Symlinks report the target's size and modification time.
func regularFile(path string, d fs.DirEntry) (fs.FileInfo, bool) {
	var (
		fi  fs.FileInfo
		err error
	)
	switch {
	case d.Type().IsRegular():
		fi, err = d.Info()
	case d.Type()&fs.ModeSymlink != 0:
		fi, err = os.Stat(path)
	default:
		return nil, false
	}
	if err != nil || !fi.Mode().IsRegular() {
		return nil, false
	}
	return fi, true
}

func excludedDirs(root string, exclude []string) []string {
	out := make([]string, 0, len(exclude))
	for _, x := range exclude {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			out = append(out, filepath.Clean(x))
			continue
		}
		out = append(out, filepath.Join(root, x))
	}
	return out
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if path == base || strings.HasPrefix(path, base+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
