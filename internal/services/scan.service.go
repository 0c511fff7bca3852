package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"volumescope/internal/logger"
	"volumescope/internal/models"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFound means the requested scan path does not exist
	ErrNotFound = errors.New("path does not exist")
	// ErrUnreadable means the scan path exists but cannot be listed
	ErrUnreadable = errors.New("path cannot be listed")
)

// ScanOptions configures a ScanService
type ScanOptions struct {
	DefaultRoot string // used when a request names no path
	Concurrency int    // folders walked at once (<= 0 means 1)
	WalkWorkers int    // goroutines per folder walk (0 = fastwalk default)
}

// ScanService measures the immediate subdirectories of a path
type ScanService struct {
	defaultRoot string
	concurrency int
	walker      *SizeWalker
}

// NewScanService creates a scan service from opts
func NewScanService(opts ScanOptions) *ScanService {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ScanService{
		defaultRoot: opts.DefaultRoot,
		concurrency: concurrency,
		walker:      NewSizeWalker(opts.WalkWorkers),
	}
}

// DefaultRoot returns the path scanned when none is requested
func (s *ScanService) DefaultRoot() string {
	return s.defaultRoot
}

// Scan lists the immediate subdirectories of requestedPath and sizes each of
// them. Files directly under the path are not counted. Folders keep the order
// of the directory listing. An unreachable path yields ErrNotFound or
// ErrUnreadable and no partial result.
func (s *ScanService) Scan(requestedPath string) (*models.ScanResult, error) {
	scanPath := requestedPath
	if strings.TrimSpace(scanPath) == "" {
		scanPath = s.defaultRoot
	}

	start := time.Now()
	result, skipped, err := s.scan(scanPath)
	elapsed := time.Since(start)

	RecordScan(elapsed, result, err)
	RecordWalkSkipped(skipped)

	if err != nil {
		logger.Error("[SCAN] Error scanning directory %s: %v", scanPath, err)
		return nil, err
	}

	logger.Info("[SCAN] %s: %d folders, %s in %v (%d entries skipped)",
		scanPath, len(result.Folders), humanize.Bytes(result.TotalSize), elapsed.Round(time.Millisecond), skipped)
	return result, nil
}

func (s *ScanService) scan(scanPath string) (*models.ScanResult, uint64, error) {
	absRoot, err := filepath.Abs(scanPath)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, 0, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s is not a directory", ErrUnreadable, scanPath)
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	// Entry types come from lstat, so symlinked directories are left out
	dirs := make([]fs.DirEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry)
		}
	}

	folders := make([]models.FolderEntry, len(dirs))
	var skipped atomic.Uint64

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, entry := range dirs {
		i, entry := i, entry
		g.Go(func() error {
			folderPath := filepath.Join(absRoot, entry.Name())
			stats := s.walker.Walk(folderPath)
			skipped.Add(stats.Skipped)
			folders[i] = models.FolderEntry{
				Name: entry.Name(),
				Size: stats.Bytes,
				Path: folderPath,
			}
			return nil
		})
	}
	_ = g.Wait()

	return &models.ScanResult{
		Path:      scanPath,
		TotalSize: TotalSize(folders),
		Folders:   folders,
	}, skipped.Load(), nil
}

// TotalSize sums the sizes of folders
func TotalSize(folders []models.FolderEntry) uint64 {
	var total uint64
	for _, f := range folders {
		total += f.Size
	}
	return total
}
