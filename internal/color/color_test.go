package color_test

import (
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kegadopt/kegadopt/internal/color"
)

func TestColor(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Color Suite")
}

var _ = Describe("Enabled", func() {
	clearColorEnv := func() {
		os.Unsetenv("NO_COLOR")
		os.Unsetenv("CLICOLOR")
		os.Unsetenv("TERM")
	}

	BeforeEach(func() {
		clearColorEnv()
	})

	It("returns true with a clean environment", func() {
		Expect(color.Enabled(false)).To(BeTrue())
	})

	It("returns false when the flag disables color", func() {
		Expect(color.Enabled(true)).To(BeFalse())
	})

	It("returns false when NO_COLOR is set, even empty", func() {
		GinkgoT().Setenv("NO_COLOR", "")
		Expect(color.Enabled(false)).To(BeFalse())
	})

	It("returns false when CLICOLOR=0", func() {
		GinkgoT().Setenv("CLICOLOR", "0")
		Expect(color.Enabled(false)).To(BeFalse())
	})

	It("returns true when CLICOLOR=1", func() {
		GinkgoT().Setenv("CLICOLOR", "1")
		Expect(color.Enabled(false)).To(BeTrue())
	})

	It("returns false when TERM=dumb", func() {
		GinkgoT().Setenv("TERM", "dumb")
		Expect(color.Enabled(false)).To(BeFalse())
	})

	It("lets the flag win over CLICOLOR=1", func() {
		GinkgoT().Setenv("CLICOLOR", "1")
		Expect(color.Enabled(true)).To(BeFalse())
	})
})

var _ = Describe("NewTheme", func() {
	It("renders text unchanged when color is off", func() {
		theme := color.NewTheme(false)
		Expect(theme.Pass.Render("ok")).To(Equal("ok"))
		Expect(theme.Fail.Render("bad")).To(Equal("bad"))
	})
})

var _ = Describe("IsTerminal", func() {
	It("returns false for a pipe", func() {
		r, w, err := os.Pipe()
		Expect(err).NotTo(HaveOccurred())

		defer r.Close()
		defer w.Close()

		Expect(color.IsTerminal(w)).To(BeFalse())
	})
})
