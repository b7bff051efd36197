package integration

import (
	"path/filepath"
	"testing"

	"github.com/xcpipe/xcpipe/internal/cli"
	"github.com/xcpipe/xcpipe/internal/errors"
)

func TestCLIHelp(t *testing.T) {
	if code := cli.Run([]string{"help"}); code != errors.ExitSuccess {
		t.Errorf("help exited with %d", code)
	}
}

func TestCLIVersion(t *testing.T) {
	if code := cli.Run([]string{"version"}); code != errors.ExitSuccess {
		t.Errorf("version exited with %d", code)
	}
}

func TestCLIUnknownCommand(t *testing.T) {
	if code := cli.Run([]string{"deploy"}); code != errors.ExitConfigError {
		t.Errorf("unknown command exited with %d, want %d", code, errors.ExitConfigError)
	}
}

func TestCLIConfigValidateFixture(t *testing.T) {
	path := filepath.Join(fixturesDir(), "minimal", "xcpipe.yaml")
	if code := cli.Run([]string{"config", "validate", "--config", path}); code != errors.ExitSuccess {
		t.Errorf("config validate exited with %d for a valid config", code)
	}
}

func TestCLIConfigValidateInvalidFixture(t *testing.T) {
	path := filepath.Join(fixturesDir(), "invalid", "bad-timeout.yaml")
	if code := cli.Run([]string{"config", "validate", "--config", path}); code != errors.ExitConfigError {
		t.Errorf("config validate exited with %d for an invalid config, want %d", code, errors.ExitConfigError)
	}
}

func TestCLITargetsOnFixture(t *testing.T) {
	// Discovery of the container and schemes works without any Xcode
	// tooling; the simulator and device sections degrade gracefully.
	dir := filepath.Join(fixturesDir(), "minimal")
	if code := cli.Run([]string{"targets", "--path", dir, "-q"}); code != errors.ExitSuccess {
		t.Errorf("targets exited with %d", code)
	}
}
