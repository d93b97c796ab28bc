package rquota_test

import (
	"context"
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
	"github.com/terminus-io/hccdu/pkg/quota/rquota"

	"gopkg.in/yaml.v3"
)

type expectedRecord struct {
	Kind      int    `yaml:"kind"`
	ID        uint32 `yaml:"id"`
	Used      uint64 `yaml:"used"`
	Soft      uint64 `yaml:"soft"`
	Hard      uint64 `yaml:"hard"`
	Grace     int64  `yaml:"grace"`
	Files     uint64 `yaml:"files"`
	FilesHard uint64 `yaml:"filesHard"`
}

type reportCase struct {
	Description   string           `yaml:"description"`
	UID           uint32           `yaml:"uid"`
	GID           uint32           `yaml:"gid"`
	Supplementary []uint32         `yaml:"supplementary"`
	Output        string           `yaml:"output"`
	Expected      []expectedRecord `yaml:"expected"`
}

func MustLoadYaml[T any](path string) T {
	data, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())

	var v T
	Expect(yaml.Unmarshal(data, &v)).To(Succeed())
	return v
}

func staticRunner(out string, err error) func(context.Context, string, ...string) ([]byte, error) {
	return func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte(out), err
	}
}

var _ = Describe("RQuotaCLI", func() {
	DescribeTable("assembles records from quota(1) output",
		func(path string) {
			tc := MustLoadYaml[reportCase](path)
			id := identity.Identity{UID: tc.UID, GID: tc.GID, Supplementary: tc.Supplementary}

			cli := rquota.NewRQuotaCLI("", true).WithRunner(staticRunner(tc.Output, nil))
			got, err := cli.Fetch(context.Background(), "/home", id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(len(tc.Expected)), tc.Description)

			for i, e := range tc.Expected {
				r := got[i]
				Expect(int(r.Kind)).To(Equal(e.Kind))
				Expect(r.ID).To(Equal(e.ID))
				Expect(r.UsedBytes).To(Equal(e.Used))
				Expect(r.SoftLimitBytes).To(Equal(e.Soft))
				Expect(r.HardLimitBytes).To(Equal(e.Hard))
				Expect(r.GraceSeconds).To(Equal(e.Grace))
				Expect(r.UsedFiles).To(Equal(e.Files))
				Expect(r.HardLimitFiles).To(Equal(e.FilesHard))
			}
		},
		Entry("user and groups", "testdata/user_and_groups.yaml"),
		Entry("missing primary group", "testdata/missing_group.yaml"),
		Entry("foreign ids", "testdata/other_user.yaml"),
	)

	It("drops supplementary groups unless asked", func() {
		tc := MustLoadYaml[reportCase]("testdata/user_and_groups.yaml")
		id := identity.Identity{UID: tc.UID, GID: tc.GID, Supplementary: tc.Supplementary}

		got, err := rquota.NewRQuotaCLI("", false).WithRunner(staticRunner(tc.Output, nil)).
			Fetch(context.Background(), "/home", id)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(2))
		Expect(got[0].Kind).To(Equal(quota.User))
		Expect(got[1].Kind).To(Equal(quota.Group))
	})

	It("parses output even when quota exits non-zero", func() {
		tc := MustLoadYaml[reportCase]("testdata/user_and_groups.yaml")
		id := identity.Identity{UID: tc.UID, GID: tc.GID}

		got, err := rquota.NewRQuotaCLI("", false).WithRunner(staticRunner(tc.Output, errors.New("exit status 1"))).
			Fetch(context.Background(), "/home", id)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(2))
	})

	It("fails when quota produced nothing", func() {
		_, err := rquota.NewRQuotaCLI("", false).WithRunner(staticRunner("", errors.New("not found"))).
			Fetch(context.Background(), "/home", identity.Identity{})
		Expect(err).To(HaveOccurred())
	})

	It("rejects garbage values", func() {
		_, err := rquota.ParseReport([]byte("Disk quotas for user x (uid 1):\nhdr\nfs a b c d e f g h\n"))
		Expect(err).To(HaveOccurred())
	})
})
