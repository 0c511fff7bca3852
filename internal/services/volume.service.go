package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"volumescope/internal/logger"
	"volumescope/internal/models"

	"github.com/shirou/gopsutil/v3/disk"
)

// GetVolumeUsage returns capacity information for the filesystem holding path
func GetVolumeUsage(path string) (*models.VolumeUsage, error) {
	if path == "" {
		path = "/"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	usage, err := disk.Usage(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage for %s: %w", path, err)
	}

	mountpoint, fstype := resolveMountpoint(absPath)
	if fstype == "" {
		fstype = usage.Fstype
	}

	return &models.VolumeUsage{
		Path:        path,
		Mountpoint:  mountpoint,
		Filesystem:  fstype,
		Total:       usage.Total,
		Used:        usage.Used,
		Free:        usage.Free,
		UsedPercent: usage.UsedPercent,
	}, nil
}

// resolveMountpoint finds the partition a path lives on. All partitions are
// listed so bind mounts and overlay roots in containers are found too.
func resolveMountpoint(absPath string) (string, string) {
	partitions, err := disk.Partitions(true)
	if err != nil {
		logger.Warn("[VOLUME] Could not list partitions: %v", err)
		return "", ""
	}

	mountpoints := make([]string, 0, len(partitions))
	for _, p := range partitions {
		mountpoints = append(mountpoints, p.Mountpoint)
	}

	best := longestMountpoint(absPath, mountpoints)
	if best < 0 {
		return "", ""
	}
	return partitions[best].Mountpoint, partitions[best].Fstype
}

// longestMountpoint returns the index of the deepest mountpoint containing
// path, or -1. Matches are on whole path components.
func longestMountpoint(path string, mountpoints []string) int {
	path = filepath.Clean(path)
	best, bestLen := -1, -1
	for i, mp := range mountpoints {
		mp = filepath.Clean(mp)
		if !containsPath(mp, path) {
			continue
		}
		if len(mp) > bestLen {
			best, bestLen = i, len(mp)
		}
	}
	return best
}

func containsPath(parent, child string) bool {
	if parent == child {
		return true
	}
	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}
	return strings.HasPrefix(child, parent)
}
