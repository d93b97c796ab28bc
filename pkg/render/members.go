package render

import (
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
	"github.com/terminus-io/hccdu/pkg/utils"
)

const (
	SortByBlocks = "b"
	SortByInodes = "i"
)

// NameFunc resolves a uid to its user name and primary group name.
type NameFunc func(uid uint32) (user, group string)

func LookupNames(uid uint32) (string, string) {
	return identity.UserName(uid), identity.PrimaryGroupOf(uid)
}

// Members prints group members' Lustre usage, largest first by blocks ("b")
// or files ("i").
func Members(w io.Writer, members []quota.Record, sortBy string, names NameFunc) {
	if names == nil {
		names = LookupNames
	}
	sorted := append([]quota.Record(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sortBy == SortByInodes {
			return sorted[i].UsedFiles > sorted[j].UsedFiles
		}
		return sorted[i].UsedBytes > sorted[j].UsedBytes
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Group ID", "User ID", "Disk Usage", "File Count"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, m := range sorted {
		user, group := names(m.ID)
		table.Append([]string{group, user, utils.FormatBytes(m.UsedBytes), strconv.FormatUint(m.UsedFiles, 10)})
	}
	table.Render()
}
