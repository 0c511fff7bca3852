package services

import (
	"io/fs"
	"sync/atomic"

	"volumescope/internal/logger"

	"github.com/charlievieth/fastwalk"
)

// WalkStats summarises a single size walk
type WalkStats struct {
	Bytes   uint64 // sum of regular file sizes
	Files   uint64 // regular files counted
	Skipped uint64 // entries that could not be listed or stat'ed
}

// SizeWalker computes the total byte size of a directory subtree
type SizeWalker struct {
	workers int
}

// NewSizeWalker returns a walker using up to workers goroutines per subtree.
// workers <= 0 uses fastwalk's default.
func NewSizeWalker(workers int) *SizeWalker {
	if workers < 0 {
		workers = 0
	}
	return &SizeWalker{workers: workers}
}

// ComputeSize returns the total size of regular files under path. It never
// fails: unreadable entries contribute zero, so the result is a lower bound
// when permissions are inconsistent inside the tree.
func (w *SizeWalker) ComputeSize(path string) uint64 {
	return w.Walk(path).Bytes
}

// Walk is ComputeSize with counters. Symlinks are not followed and not
// counted; devices, sockets and pipes are ignored.
func (w *SizeWalker) Walk(path string) WalkStats {
	var total, files, skipped atomic.Uint64

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	err := fastwalk.Walk(&conf, path, func(itemPath string, d fs.DirEntry, err error) error {
		if err != nil {
			skipped.Add(1)
			logger.Debug("[WALK] Unable to access %s: %v", itemPath, err)
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			skipped.Add(1)
			logger.Debug("[WALK] Unable to stat %s: %v", itemPath, err)
			return nil
		}

		total.Add(uint64(info.Size()))
		files.Add(1)
		return nil
	})
	if err != nil {
		skipped.Add(1)
		logger.Debug("[WALK] Walk of %s stopped early: %v", path, err)
	}

	return WalkStats{
		Bytes:   total.Load(),
		Files:   files.Load(),
		Skipped: skipped.Load(),
	}
}
