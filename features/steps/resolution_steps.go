//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"

	apptoolchain "frame-extractor/application/toolchain"
	"frame-extractor/domain/toolchain"

	"github.com/cucumber/godog"
)

// fakeMachine simulates where ffmpeg lives; package installs make it visible
type fakeMachine struct {
	path     string
	method   toolchain.ResolutionMethod
	searches int
}

func (m *fakeMachine) LocateWithMethod() (string, toolchain.ResolutionMethod, bool) {
	m.searches++
	if m.path == "" {
		return "", 0, false
	}
	return m.path, m.method, true
}

type fakePackageManager struct {
	machine     *fakeMachine
	installPath string
	calls       int
}

func (p *fakePackageManager) TryInstall(ctx context.Context) bool {
	p.calls++
	if p.installPath == "" {
		return false
	}
	p.machine.path = p.installPath
	p.machine.method = toolchain.FoundInKnownLocation
	return true
}

type fakeArchive struct {
	path  string
	calls int
}

func (a *fakeArchive) Install(ctx context.Context, onProgress toolchain.DownloadProgressFunc) (string, error) {
	a.calls++
	if a.path == "" {
		return "", errors.New("download failed")
	}
	return a.path, nil
}

// resolutionContext holds test state for resolution scenarios
type resolutionContext struct {
	machine    *fakeMachine
	packages   *fakePackageManager
	archive    *fakeArchive
	goos       string
	pinnedPath string
	resolver   *apptoolchain.Resolver
	available  bool
}

// SharedResolutionContext is reset before each scenario via Before hook
var SharedResolutionContext *resolutionContext

func InitializeResolutionScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		machine := &fakeMachine{}
		SharedResolutionContext = &resolutionContext{
			machine:  machine,
			packages: &fakePackageManager{machine: machine},
			archive:  &fakeArchive{},
			goos:     "linux",
		}
		return c, nil
	})

	ctx.Step(`^ffmpeg is on the PATH at "([^"]*)"$`, ffmpegIsOnThePathAt)
	ctx.Step(`^ffmpeg is not on the machine$`, ffmpegIsNotOnTheMachine)
	ctx.Step(`^the operating system is "([^"]*)"$`, theOperatingSystemIs)
	ctx.Step(`^winget installs ffmpeg to "([^"]*)"$`, wingetInstallsFFmpegTo)
	ctx.Step(`^the archive installer provides "([^"]*)"$`, theArchiveInstallerProvides)
	ctx.Step(`^the archive installer fails$`, theArchiveInstallerFails)
	ctx.Step(`^the configured ffmpeg path is "([^"]*)"$`, theConfiguredFFmpegPathIs)
	ctx.Step(`^ffmpeg is resolved$`, ffmpegIsResolved)
	ctx.Step(`^ffmpeg should be resolved to "([^"]*)" by "([^"]*)"$`, ffmpegShouldBeResolvedTo)
	ctx.Step(`^ffmpeg should be unavailable$`, ffmpegShouldBeUnavailable)
	ctx.Step(`^no installer should be run$`, noInstallerShouldBeRun)
	ctx.Step(`^the archive installer should not be run$`, theArchiveInstallerShouldNotBeRun)
	ctx.Step(`^the package manager should not be run$`, thePackageManagerShouldNotBeRun)
	ctx.Step(`^the machine should have been searched (\d+) times$`, theMachineShouldHaveBeenSearched)
}

func getResolutionContext() *resolutionContext {
	return SharedResolutionContext
}

func ffmpegIsOnThePathAt(path string) error {
	r := getResolutionContext()
	r.machine.path = path
	r.machine.method = toolchain.FoundInPath
	return nil
}

func ffmpegIsNotOnTheMachine() error {
	getResolutionContext().machine.path = ""
	return nil
}

func theOperatingSystemIs(goos string) error {
	getResolutionContext().goos = goos
	return nil
}

func wingetInstallsFFmpegTo(path string) error {
	getResolutionContext().packages.installPath = path
	return nil
}

func theArchiveInstallerProvides(path string) error {
	getResolutionContext().archive.path = path
	return nil
}

func theArchiveInstallerFails() error {
	getResolutionContext().archive.path = ""
	return nil
}

func theConfiguredFFmpegPathIs(path string) error {
	getResolutionContext().pinnedPath = path
	return nil
}

func ffmpegIsResolved() error {
	r := getResolutionContext()
	if r.resolver == nil {
		pinned := r.pinnedPath
		r.resolver = apptoolchain.NewResolver(r.machine, r.archive,
			apptoolchain.WithPackageInstaller(r.packages),
			apptoolchain.WithGOOS(r.goos),
			apptoolchain.WithPinnedPath(pinned),
			apptoolchain.WithFileCheck(func(path string) bool { return path == pinned }),
		)
	}
	r.available = r.resolver.EnsureAvailable(context.Background())
	return nil
}

func ffmpegShouldBeResolvedTo(path, method string) error {
	r := getResolutionContext()
	if !r.available {
		return fmt.Errorf("expected ffmpeg to be available")
	}
	binary, ok := r.resolver.Binary()
	if !ok {
		return fmt.Errorf("resolver reports no binary")
	}
	if binary.Path != path {
		return fmt.Errorf("expected path %q, got %q", path, binary.Path)
	}
	if binary.Method.String() != method {
		return fmt.Errorf("expected method %q, got %q", method, binary.Method)
	}
	return nil
}

func ffmpegShouldBeUnavailable() error {
	r := getResolutionContext()
	if r.available {
		return fmt.Errorf("expected ffmpeg to be unavailable")
	}
	if r.resolver.State() != toolchain.Unavailable {
		return fmt.Errorf("expected state %s, got %s", toolchain.Unavailable, r.resolver.State())
	}
	return nil
}

func noInstallerShouldBeRun() error {
	r := getResolutionContext()
	if r.packages.calls != 0 || r.archive.calls != 0 {
		return fmt.Errorf("expected no installs, got %d package and %d archive", r.packages.calls, r.archive.calls)
	}
	return nil
}

func theArchiveInstallerShouldNotBeRun() error {
	if calls := getResolutionContext().archive.calls; calls != 0 {
		return fmt.Errorf("expected no archive installs, got %d", calls)
	}
	return nil
}

func thePackageManagerShouldNotBeRun() error {
	if calls := getResolutionContext().packages.calls; calls != 0 {
		return fmt.Errorf("expected no package manager runs, got %d", calls)
	}
	return nil
}

func theMachineShouldHaveBeenSearched(times int) error {
	if got := getResolutionContext().machine.searches; got != times {
		return fmt.Errorf("expected %d searches, got %d", times, got)
	}
	return nil
}
