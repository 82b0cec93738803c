package dotplay_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/kevin-cantwell/dotplay"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "dotplay")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	write := func(body string) string {
		path := filepath.Join(dir, "dotplay.yaml")
		ExpectWithOffset(1, os.WriteFile(path, []byte(body), 0644)).To(Succeed())
		return path
	}

	It("has valid defaults", func() {
		cfg := dotplay.DefaultConfig()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Play.Pool).To(Equal(8))
		Expect(cfg.Play.Gamma).To(Equal(2.2))
		Expect(cfg.Show.BlankDot).To(BeTrue())
		Expect(cfg.Play.BlankDot).To(BeFalse())
	})

	It("overlays a file on the defaults", func() {
		cfg, err := dotplay.LoadConfig(write(`
log_level: debug
show:
  mode: ordered
play:
  cols: 120
  rows: 40
  min_sleep: 5ms
  color: true
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LogLevel).To(Equal("debug"))
		Expect(cfg.Show.Mode).To(Equal("ordered"))
		Expect(cfg.Show.Cols).To(Equal(80))
		Expect(cfg.Play.Cols).To(Equal(120))
		Expect(cfg.Play.MinSleep).To(Equal(5 * time.Millisecond))
		Expect(cfg.Play.Color).To(BeTrue())
		Expect(cfg.Play.Pool).To(Equal(8))
	})

	It("rejects unknown keys", func() {
		_, err := dotplay.LoadConfig(write("play:\n  speed: 2\n"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects invalid values", func() {
		_, err := dotplay.LoadConfig(write("play:\n  pool: 1\n"))
		Expect(err).To(MatchError(dotplay.ErrInvalidConfig))
	})

	It("reports a missing file", func() {
		_, err := dotplay.LoadConfig(filepath.Join(dir, "nope.yaml"))
		Expect(err).To(MatchError(os.ErrNotExist))
	})

	table.DescribeTable("Validate",
		func(mutate func(*dotplay.Config)) {
			cfg := dotplay.DefaultConfig()
			mutate(cfg)
			Expect(cfg.Validate()).To(MatchError(dotplay.ErrInvalidConfig))
		},
		table.Entry("log level", func(c *dotplay.Config) { c.LogLevel = "loud" }),
		table.Entry("show size", func(c *dotplay.Config) { c.Show.Cols = 0 }),
		table.Entry("show gamma", func(c *dotplay.Config) { c.Show.Gamma = 0 }),
		table.Entry("show threshold", func(c *dotplay.Config) { c.Show.Threshold = 256 }),
		table.Entry("show mode", func(c *dotplay.Config) { c.Show.Mode = "x" }),
		table.Entry("play size", func(c *dotplay.Config) { c.Play.Rows = dotplay.MaxSize }),
		table.Entry("play gamma", func(c *dotplay.Config) { c.Play.Gamma = -1 }),
		table.Entry("color step", func(c *dotplay.Config) { c.Play.ColorStep = 0 }),
		table.Entry("min sleep", func(c *dotplay.Config) { c.Play.MinSleep = -time.Second }),
	)

	Describe("ParseCells", func() {
		It("reads a column and row pair", func() {
			cols, rows, err := dotplay.ParseCells(" 80, 25")
			Expect(err).NotTo(HaveOccurred())
			Expect(cols).To(Equal(80))
			Expect(rows).To(Equal(25))
		})

		It("rejects malformed pairs", func() {
			for _, s := range []string{"80", "a,b", "0,10", "80x25"} {
				_, _, err := dotplay.ParseCells(s)
				Expect(err).To(MatchError(dotplay.ErrInvalidConfig), s)
			}
		})
	})
})
