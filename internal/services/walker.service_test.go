package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeSize(t *testing.T) {
	testCases := []struct {
		name   string
		layout map[string][]byte
		want   uint64
		files  uint64
	}{
		{
			name:   "GivenEmptyDir_WhenWalked_ThenZero",
			layout: map[string][]byte{},
			want:   0,
		},
		{
			name: "GivenFlatDir_WhenWalked_ThenSumOfFiles",
			layout: map[string][]byte{
				"a": bytesOf(10),
				"b": bytesOf(20),
				"c": bytesOf(30),
			},
			want:  60,
			files: 3,
		},
		{
			name: "GivenDeepTree_WhenWalked_ThenSumIsTransitive",
			layout: map[string][]byte{
				"l1/l2/l3/l4/f": bytesOf(1024),
				"l1/f":          bytesOf(1),
				"side/":         nil,
				"side/g":        bytesOf(7),
			},
			want:  1032,
			files: 3,
		},
		{
			name: "GivenZeroByteFiles_WhenWalked_ThenCountedWithoutSize",
			layout: map[string][]byte{
				"empty1": {},
				"empty2": {},
			},
			want:  0,
			files: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := makeTestDir(t, tc.layout)
			walker := NewSizeWalker(0)

			if got := walker.ComputeSize(root); got != tc.want {
				t.Errorf("ComputeSize() = %d, want %d", got, tc.want)
			}
			stats := walker.Walk(root)
			if stats.Files != tc.files {
				t.Errorf("Files = %d, want %d", stats.Files, tc.files)
			}
			if stats.Skipped != 0 {
				t.Errorf("Skipped = %d, want 0", stats.Skipped)
			}
		})
	}
}

func TestComputeSizeIgnoresSymlinks(t *testing.T) {
	root := makeTestDir(t, map[string][]byte{
		"tree/f":   bytesOf(100),
		"target/g": bytesOf(5000),
	})
	tree := filepath.Join(root, "tree")

	if err := os.Symlink(filepath.Join(root, "target"), filepath.Join(tree, "dirlink")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "target", "g"), filepath.Join(tree, "filelink")); err != nil {
		t.Fatal(err)
	}
	// A cycle back to the walked tree
	if err := os.Symlink(tree, filepath.Join(tree, "loop")); err != nil {
		t.Fatal(err)
	}

	if got := NewSizeWalker(0).ComputeSize(tree); got != 100 {
		t.Errorf("ComputeSize() = %d, want 100 (symlinks must not be followed or counted)", got)
	}
}

func TestComputeSizeSkipsUnreadableSubtrees(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := makeTestDir(t, map[string][]byte{
		"open/f":         bytesOf(100),
		"locked/hidden":  bytesOf(9999),
		"sibling/g":      bytesOf(11),
		"locked/deeper/": nil,
	})
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	stats := NewSizeWalker(0).Walk(root)
	if stats.Bytes != 111 {
		t.Errorf("Bytes = %d, want 111 (locked subtree contributes zero)", stats.Bytes)
	}
	if stats.Skipped == 0 {
		t.Error("Skipped = 0, want the locked directory to be reported")
	}
}

func TestComputeSizeMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	stats := NewSizeWalker(0).Walk(missing)
	if stats.Bytes != 0 {
		t.Errorf("Bytes = %d, want 0", stats.Bytes)
	}
	if stats.Skipped == 0 {
		t.Error("Skipped = 0, want the missing root to be reported")
	}
}
