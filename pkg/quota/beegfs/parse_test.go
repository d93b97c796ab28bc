package beegfs_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
	"github.com/terminus-io/hccdu/pkg/quota/beegfs"

	"gopkg.in/yaml.v3"
)

type csvCase struct {
	Description string `yaml:"description"`
	Kind        int    `yaml:"kind"`
	Output      string `yaml:"output"`
	Expected    struct {
		ID        uint32 `yaml:"id"`
		Used      uint64 `yaml:"used"`
		Hard      uint64 `yaml:"hard"`
		Files     uint64 `yaml:"files"`
		FilesHard uint64 `yaml:"filesHard"`
	} `yaml:"expected"`
}

func MustLoadYaml[T any](path string) T {
	data, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())

	var v T
	Expect(yaml.Unmarshal(data, &v)).To(Succeed())
	return v
}

// idRunner answers beegfs-ctl with a row for the requested id, failing for
// ids listed in broken.
func idRunner(broken ...string) func(context.Context, string, ...string) ([]byte, error) {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		id := args[len(args)-1]
		for _, b := range broken {
			if b == id {
				return []byte("Error: unknown id"), errors.New("exit status 1")
			}
		}
		return []byte(fmt.Sprintf("name,id,size,hard,files,hard\nx,%s,%s000 Byte,unlimited,1,unlimited\n", id, id)), nil
	}
}

var _ = Describe("ParseCSV", func() {
	DescribeTable("decodes beegfs-ctl rows",
		func(path string) {
			tc := MustLoadYaml[csvCase](path)

			r, err := beegfs.ParseCSV([]byte(tc.Output), quota.Kind(tc.Kind))
			Expect(err).NotTo(HaveOccurred(), tc.Description)
			Expect(int(r.Kind)).To(Equal(tc.Kind))
			Expect(r.ID).To(Equal(tc.Expected.ID))
			Expect(r.UsedBytes).To(Equal(tc.Expected.Used))
			Expect(r.HardLimitBytes).To(Equal(tc.Expected.Hard))
			Expect(r.SoftLimitBytes).To(Equal(tc.Expected.Hard))
			Expect(r.UsedFiles).To(Equal(tc.Expected.Files))
			Expect(r.HardLimitFiles).To(Equal(tc.Expected.FilesHard))
		},
		Entry("limited", "testdata/limited.yaml"),
		Entry("unlimited", "testdata/unlimited.yaml"),
	)

	It("fails without a data row", func() {
		_, err := beegfs.ParseCSV([]byte("name,id,size,hard,files,hard\n"), quota.User)
		Expect(err).To(HaveOccurred())
	})

	It("fails on a missing column", func() {
		_, err := beegfs.ParseCSV([]byte("name,id\nx,1\n"), quota.User)
		Expect(err).To(MatchError(ContainSubstring("size")))
	})
})

var _ = Describe("BeeGFSCLI", func() {
	id := identity.Identity{UID: 1234, GID: 100, Supplementary: []uint32{200, 300}}

	It("queries user, primary group and supplementary groups in order", func() {
		var calls []string
		runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
			calls = append(calls, strings.Join(args[3:], " "))
			return idRunner()(ctx, name, args...)
		}

		got, err := beegfs.NewBeeGFSCLI("", true).WithRunner(runner).
			Fetch(context.Background(), "/common", id)
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal([]string{"--uid 1234", "--gid 100", "--gid 200", "--gid 300"}))
		Expect(got).To(HaveLen(4))
		Expect(got[0].Kind).To(Equal(quota.User))
		Expect(got[0].UsedBytes).To(Equal(uint64(1234000)))
		Expect(got[3].ID).To(Equal(uint32(300)))
	})

	It("skips supplementary groups beegfs-ctl cannot report", func() {
		got, err := beegfs.NewBeeGFSCLI("", true).WithRunner(idRunner("200")).
			Fetch(context.Background(), "/common", id)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(3))
		Expect(got[2].ID).To(Equal(uint32(300)))
	})

	It("fails when the primary group cannot be read", func() {
		_, err := beegfs.NewBeeGFSCLI("", false).WithRunner(idRunner("100")).
			Fetch(context.Background(), "/common", id)
		Expect(err).To(HaveOccurred())
	})

	It("passes the mount point through", func() {
		var mount string
		runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
			mount = args[2]
			return idRunner()(ctx, name, args...)
		}
		_, err := beegfs.NewBeeGFSCLI("/opt/beegfs/sbin/beegfs-ctl", false).WithRunner(runner).
			Fetch(context.Background(), "/common", id)
		Expect(err).NotTo(HaveOccurred())
		Expect(mount).To(Equal("--mount=/common"))
	})
})
