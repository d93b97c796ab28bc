package lustre

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/terminus-io/hccdu/pkg/quota"
	"github.com/terminus-io/hccdu/pkg/utils"
)

const DefaultGroupHelper = "/util/opt/bin/hcc/lgq"

var memberPattern = regexp.MustCompile(`if_quotactl\(([^)]*)\)`)
var fieldPattern = regexp.MustCompile(`(\w+)=(\d+)`)

// Members runs the setuid group helper, which prints the Lustre user quota
// of every member of the caller's groups:
//
//	[if_quotactl(qc_type=0,qc_id=1234,dqb_bhardlimit=0,...,dqb_curinodes=52),...]
func Members(ctx context.Context, run utils.Runner, helper string) ([]quota.Record, error) {
	if helper == "" {
		helper = DefaultGroupHelper
	}
	out, err := run(ctx, helper)
	if err != nil {
		return nil, err
	}
	return ParseMembers(out)
}

func ParseMembers(out []byte) ([]quota.Record, error) {
	var members []quota.Record
	for _, m := range memberPattern.FindAllSubmatch(out, -1) {
		fields := map[string]uint64{}
		for _, f := range fieldPattern.FindAllSubmatch(m[1], -1) {
			v, err := strconv.ParseUint(string(f[2]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad value in %q: %w", m[0], err)
			}
			fields[string(f[1])] = v
		}
		if _, ok := fields["qc_id"]; !ok {
			return nil, fmt.Errorf("missing qc_id in %q", m[0])
		}

		q := ifQuotactl{Type: uint32(fields["qc_type"]), ID: uint32(fields["qc_id"])}
		q.Blk.BHardLimit = fields["dqb_bhardlimit"]
		q.Blk.BSoftLimit = fields["dqb_bsoftlimit"]
		q.Blk.CurSpace = fields["dqb_curspace"]
		q.Blk.IHardLimit = fields["dqb_ihardlimit"]
		q.Blk.ISoftLimit = fields["dqb_isoftlimit"]
		q.Blk.CurInodes = fields["dqb_curinodes"]
		members = append(members, q.record())
	}
	return members, nil
}
