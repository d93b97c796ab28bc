package render

import (
	"fmt"
	"io"

	"github.com/terminus-io/hccdu/pkg/reporter"
	"github.com/terminus-io/hccdu/pkg/utils"
)

// Dump prints every record each mount's backend returned, one per line.
func Dump(w io.Writer, mounts []reporter.MountData) {
	for _, m := range mounts {
		if len(m.Records) == 0 {
			fmt.Fprintf(w, "no %s quota for %s\n", m.Source, m.Path)
			continue
		}
		for _, r := range m.Records {
			fmt.Fprintf(w, "%d %s quota for %s is %d/%d KiB %d/%d files\n",
				r.ID, r.Kind, m.Path,
				r.UsedBytes/utils.KiB, r.HardLimitBytes/utils.KiB,
				r.UsedFiles, r.HardLimitFiles)
		}
	}
}
