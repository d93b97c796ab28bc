package rquota

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
)

const headerPrefix = "Disk quotas for"

// ParseReport extracts every user and group block from `quota -v -p -w`
// output, in the order printed. Sizes are reported in KiB and returned in
// bytes.
//
//	Disk quotas for user jdoe (uid 1234):
//	     Filesystem   space   quota   limit   grace   files   quota   limit   grace
//	nfs:/export/home  20480*  10240   40960   1700000000   12   0   0   0
func ParseReport(out []byte) ([]quota.Record, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var records []quota.Record
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), headerPrefix) {
			continue
		}
		kind, id, err := parseHeader(line)
		if err != nil {
			return nil, err
		}
		if i+2 >= len(lines) {
			continue
		}
		fields := strings.Fields(lines[i+2])
		if len(fields) < 9 || strings.HasPrefix(strings.TrimSpace(lines[i+2]), headerPrefix) {
			continue
		}
		r, err := parseValues(kind, id, fields)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// parseHeader handles "Disk quotas for user jdoe (uid 1234):".
func parseHeader(line string) (quota.Kind, uint32, error) {
	fields := strings.Fields(line)
	if len(fields) < 7 {
		return 0, 0, fmt.Errorf("malformed quota header %q", line)
	}

	var kind quota.Kind
	switch fields[3] {
	case "user":
		kind = quota.User
	case "group":
		kind = quota.Group
	default:
		return 0, 0, fmt.Errorf("unsupported quota type %q", fields[3])
	}

	idStr := strings.TrimRight(fields[6], "):")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad id in quota header %q: %w", line, err)
	}
	return kind, uint32(id), nil
}

func parseValues(kind quota.Kind, id uint32, fields []string) (quota.Record, error) {
	var v [8]uint64
	for i := range v {
		n, err := strconv.ParseUint(strings.TrimSuffix(fields[i+1], "*"), 10, 64)
		if err != nil {
			return quota.Record{}, fmt.Errorf("bad quota value %q for %s %d: %w", fields[i+1], kind, id, err)
		}
		v[i] = n
	}
	return quota.Record{
		Kind:             kind,
		ID:               id,
		UsedBytes:        v[0] * 1024,
		SoftLimitBytes:   v[1] * 1024,
		HardLimitBytes:   v[2] * 1024,
		GraceSeconds:     int64(v[3]),
		UsedFiles:        v[4],
		SoftLimitFiles:   v[5],
		HardLimitFiles:   v[6],
		FileGraceSeconds: int64(v[7]),
	}, nil
}

// Assemble orders parsed records as [user, primary group, supplementary...].
// Without both primary records the mount is treated as untracked and nil is
// returned. Supplementary groups follow id.Supplementary order; groups the
// server did not report are left out.
func Assemble(records []quota.Record, id identity.Identity, supplementary bool) []quota.Record {
	var user, group *quota.Record
	groups := map[uint32]quota.Record{}
	for i := range records {
		r := records[i]
		switch {
		case r.Kind == quota.User && r.ID == id.UID:
			user = &records[i]
		case r.Kind == quota.Group && r.ID == id.GID:
			group = &records[i]
		case r.Kind == quota.Group:
			groups[r.ID] = r
		}
	}
	if user == nil || group == nil {
		return nil
	}

	list := []quota.Record{*user, *group}
	if !supplementary {
		return list
	}
	for _, gid := range id.Supplementary {
		if r, ok := groups[gid]; ok {
			list = append(list, r)
		}
	}
	return list
}
