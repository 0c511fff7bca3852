package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"volumescope/internal/models"
)

func writeJSON(w io.Writer, result *models.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// writeTable prints folders largest first with their share of the total
func writeTable(w io.Writer, result *models.ScanResult) error {
	folders := make([]models.FolderEntry, len(result.Folders))
	copy(folders, result.Folders)
	sort.SliceStable(folders, func(i, j int) bool {
		return folders[i].Size > folders[j].Size
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "SIZE\tSHARE\tFOLDER\t\n")
	for _, f := range folders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", humanize.IBytes(f.Size), share(f.Size, result.TotalSize), f.Name)
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t\n", humanize.IBytes(result.TotalSize), "100.0%", "total ("+result.Path+")")
	return tw.Flush()
}

func share(size, total uint64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(size)*100/float64(total))
}
