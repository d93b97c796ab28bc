package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/terminus-io/hccdu/pkg/quota"
	"golang.org/x/sys/unix"
)

// GetFilesystemStat returns the statfs figures and the owner of path.
func GetFilesystemStat(path string) (quota.FilesystemStat, error) {
	fs := unix.Statfs_t{}
	if err := unix.Statfs(path, &fs); err != nil {
		return quota.FilesystemStat{}, fmt.Errorf("statfs %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return quota.FilesystemStat{}, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return quota.FilesystemStat{}, fmt.Errorf("stat %s: no ownership information", path)
	}

	return quota.FilesystemStat{
		BlockSize:       uint64(fs.Bsize),
		TotalBlocks:     fs.Blocks,
		AvailableBlocks: fs.Bavail,
		TotalFiles:      fs.Files,
		AvailableFiles:  fs.Ffree,
		OwnerUID:        st.Uid,
		OwnerGID:        st.Gid,
	}, nil
}

// GetMountPoint walks up from path until the device changes and returns the
// topmost directory still on path's device.
func GetMountPoint(path string) (string, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dev, err := deviceOf(path)
	if err != nil {
		return "", err
	}

	current := path
	for current != "/" {
		parent := filepath.Dir(current)
		pdev, err := deviceOf(parent)
		if err != nil {
			return "", err
		}
		if pdev != dev {
			return current, nil
		}
		current = parent
	}
	return "/", nil
}

func deviceOf(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return uint64(st.Dev), nil
}
