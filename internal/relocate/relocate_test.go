package relocate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kegadopt/kegadopt/internal/probe"
	"github.com/kegadopt/kegadopt/internal/relocate"
	"github.com/kegadopt/kegadopt/pkg/logger"
)

func TestRelocate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Relocate Suite")
}

// stubBrew implements brew.Client and records every call.
type stubBrew struct {
	installed    bool
	installedErr error
	uninstallErr error
	linkErr      error

	queried     []string
	uninstalled []string
	linked      []string
}

func (*stubBrew) Prefix(context.Context) (string, error)  { return "", errors.New("not used") }
func (*stubBrew) Cellar(context.Context) (string, error)  { return "", errors.New("not used") }
func (*stubBrew) Version(context.Context) (string, error) { return "4.2.17", nil }

func (s *stubBrew) IsInstalled(_ context.Context, name string) (bool, error) {
	s.queried = append(s.queried, name)
	return s.installed, s.installedErr
}

func (s *stubBrew) Uninstall(_ context.Context, name string) error {
	s.uninstalled = append(s.uninstalled, name)
	return s.uninstallErr
}

func (s *stubBrew) Link(_ context.Context, name string) error {
	s.linked = append(s.linked, name)
	return s.linkErr
}

// spyProbe records whether it was invoked.
type spyProbe struct {
	version string
	err     error
	called  bool
}

func (s *spyProbe) Version(context.Context) (string, error) {
	s.called = true
	return s.version, s.err
}

func (*spyProbe) Describe() string { return "spy" }

var _ = Describe("Relocator", func() {
	var (
		prefix   string
		cellar   string
		client   *stubBrew
		registry *probe.Registry
		vbox     *spyProbe
	)

	BeforeEach(func() {
		prefix = GinkgoT().TempDir()
		cellar = GinkgoT().TempDir()
		client = &stubBrew{}
		registry = probe.NewRegistry()
		vbox = &spyProbe{version: "6.1.34"}
		registry.Register("virtualbox", vbox)
	})

	newRelocator := func() *relocate.Relocator {
		return relocate.New(prefix, cellar, registry, client, logger.NewNoOpLogger())
	}

	writeBinary := func(name, content string) string {
		path := filepath.Join(prefix, name)
		Expect(os.WriteFile(path, []byte(content), 0o755)).To(Succeed())

		return path
	}

	Describe("unknown packages", func() {
		It("fails before any side effect", func() {
			_, err := newRelocator().Relocate(context.Background(), `.*`, "imagemagick")
			Expect(err).To(HaveOccurred())

			var unknownErr *probe.UnknownPackageError
			Expect(errors.As(err, &unknownErr)).To(BeTrue())
			Expect(client.queried).To(BeEmpty())
			Expect(client.linked).To(BeEmpty())
		})
	})

	Describe("zero-match runs", func() {
		It("succeeds without probing or touching brew", func() {
			writeBinary("meld", "meld-bin")

			result, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.FilesMoved).To(Equal(0))
			Expect(vbox.called).To(BeFalse())
			Expect(client.queried).To(BeEmpty())
			Expect(client.uninstalled).To(BeEmpty())
			Expect(client.linked).To(BeEmpty())

			entries, readErr := os.ReadDir(cellar)
			Expect(readErr).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("a full adoption", func() {
		It("moves matching files, skips symlinks and relinks the keg", func() {
			writeBinary("vbox", "vbox-bin")
			writeBinary("virtualboxmanage", "vboxmanage-bin")
			writeBinary("meld", "meld-bin")
			Expect(os.Symlink(filepath.Join(cellar, "x"),
				filepath.Join(prefix, "vboxlink"))).To(Succeed())

			result, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).NotTo(HaveOccurred())

			Expect(result.FilesMoved).To(Equal(2))
			Expect(result.Version).To(Equal("6.1.34"))
			Expect(result.KegName).To(Equal("virtualbox-executables"))
			Expect(result.Destination).To(Equal(
				filepath.Join(cellar, "virtualbox-executables", "6.1.34", "bin")))

			Expect(filepath.Join(result.Destination, "vbox")).To(BeARegularFile())
			Expect(filepath.Join(result.Destination, "virtualboxmanage")).To(BeARegularFile())

			// Unmatched file and the symlink stay behind.
			Expect(filepath.Join(prefix, "meld")).To(BeARegularFile())
			_, lerr := os.Lstat(filepath.Join(prefix, "vboxlink"))
			Expect(lerr).NotTo(HaveOccurred())

			Expect(client.linked).To(Equal([]string{"virtualbox-executables"}))
		})

		It("reports moved bytes", func() {
			writeBinary("vbox", "0123456789")

			result, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.BytesMoved).To(Equal(uint64(10)))
		})

		It("is idempotent on a stable filesystem", func() {
			writeBinary("vbox", "vbox-bin")

			first, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).NotTo(HaveOccurred())
			Expect(first.FilesMoved).To(Equal(1))

			second, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.FilesMoved).To(Equal(0))

			// The keg from the first run is untouched.
			Expect(filepath.Join(first.Destination, "vbox")).To(BeARegularFile())
		})

		It("overwrites a name collision in the keg", func() {
			writeBinary("vbox", "new-vbox")

			dest := filepath.Join(cellar, "virtualbox-executables", "6.1.34", "bin")
			Expect(os.MkdirAll(dest, 0o755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dest, "vbox"), []byte("stale"), 0o755)).To(Succeed())

			_, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).NotTo(HaveOccurred())

			data, readErr := os.ReadFile(filepath.Join(dest, "vbox"))
			Expect(readErr).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("new-vbox"))
		})
	})

	Describe("destination path construction", func() {
		It("builds cellar/name-executables/version/bin", func() {
			registry.Register("meld", &spyProbe{version: "3.21.2"})
			writeBinary("meld", "meld-bin")

			result, err := newRelocator().Relocate(context.Background(), `meld.*`, "meld")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Destination).To(Equal(
				filepath.Join(cellar, "meld-executables", "3.21.2", "bin")))
		})
	})

	Describe("version probe failures", func() {
		It("moves nothing and creates no keg directory", func() {
			vbox.err = errors.New("VBoxManage exploded")
			writeBinary("vbox", "vbox-bin")

			_, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).To(HaveOccurred())

			// Source file untouched, cellar untouched.
			Expect(filepath.Join(prefix, "vbox")).To(BeARegularFile())

			entries, readErr := os.ReadDir(cellar)
			Expect(readErr).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("pre-empting an existing keg", func() {
		It("uninstalls an installed keg before moving", func() {
			client.installed = true
			writeBinary("vbox", "vbox-bin")

			_, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).NotTo(HaveOccurred())
			Expect(client.uninstalled).To(Equal([]string{"virtualbox-executables"}))
		})

		It("tolerates uninstall failures", func() {
			client.installed = true
			client.uninstallErr = errors.New("Error: refusing")
			writeBinary("vbox", "vbox-bin")

			result, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.FilesMoved).To(Equal(1))
		})

		It("tolerates query failures", func() {
			client.installedErr = errors.New("brew hiccup")
			writeBinary("vbox", "vbox-bin")

			_, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).NotTo(HaveOccurred())
			Expect(client.uninstalled).To(BeEmpty())
		})
	})

	Describe("move failures", func() {
		It("halts on the first failed move and reports it", func() {
			writeBinary("vboxheadless", "headless-bin")
			writeBinary("vboxmanage", "manage-bin")

			// A directory squatting on the destination name makes the
			// first move fail.
			dest := filepath.Join(cellar, "virtualbox-executables", "6.1.34", "bin")
			Expect(os.MkdirAll(filepath.Join(dest, "vboxheadless"), 0o755)).To(Succeed())

			_, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).To(HaveOccurred())

			var moveErr *relocate.MoveError
			Expect(errors.As(err, &moveErr)).To(BeTrue())
			Expect(moveErr.Source).To(Equal(filepath.Join(prefix, "vboxheadless")))
			Expect(moveErr.Dest).To(Equal(filepath.Join(dest, "vboxheadless")))

			// The run stops before the second file and never links.
			Expect(filepath.Join(prefix, "vboxmanage")).To(BeARegularFile())
			Expect(client.linked).To(BeEmpty())
		})
	})

	Describe("link failures", func() {
		It("fails but leaves the files relocated", func() {
			client.linkErr = errors.New("Error: could not symlink")
			writeBinary("vbox", "vbox-bin")

			_, err := newRelocator().Relocate(
				context.Background(), `v(irtual)?box.*`, "virtualbox")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unlinked"))

			dest := filepath.Join(cellar, "virtualbox-executables", "6.1.34", "bin")
			Expect(filepath.Join(dest, "vbox")).To(BeARegularFile())

			_, statErr := os.Stat(filepath.Join(prefix, "vbox"))
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})

	Describe("scan failures", func() {
		It("surfaces unreadable prefix directories", func() {
			missing := relocate.New(
				filepath.Join(prefix, "gone"), cellar, registry, client, logger.NewNoOpLogger())

			_, err := missing.Relocate(context.Background(), `.*`, "virtualbox")
			Expect(err).To(HaveOccurred())
		})
	})
})
