package xcodeproj

import (
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// PRODUCT_BUNDLE_IDENTIFIER = com.example.MyApp;
	bundleIDRegex = regexp.MustCompile(`PRODUCT_BUNDLE_IDENTIFIER\s*=\s*"?([\w.\-]+)"?\s*;`)

	// iPhone 15 Pro (17.2) (ABCD1234-5678-90AB-CDEF-1234567890AB)
	xctraceDeviceRegex = regexp.MustCompile(`^(.+?)\s+\(([\d.]+)\)\s+\(([0-9A-Fa-f\-]{25,})\)$`)
)

// Simulator is one simulator destination.
type Simulator struct {
	Name    string
	UDID    string
	State   string // Booted, Shutdown
	Runtime string // e.g. iOS-17-2
}

// Device is one connected physical device.
type Device struct {
	Name    string
	UDID    string
	Version string
}

// Simulators lists available simulators via simctl.
func Simulators(ctx context.Context) ([]Simulator, error) {
	cmd := exec.CommandContext(ctx, "xcrun", "simctl", "list", "devices", "available", "-j")
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	return parseSimulators(string(out)), nil
}

// parseSimulators extracts simulators from `simctl list devices -j` output:
// a "devices" object keyed by runtime identifier, each holding a device array.
func parseSimulators(jsonOut string) []Simulator {
	var sims []Simulator
	gjson.Get(jsonOut, "devices").ForEach(func(runtime, devices gjson.Result) bool {
		rt := shortRuntime(runtime.String())
		devices.ForEach(func(_, d gjson.Result) bool {
			if d.Get("isAvailable").Exists() && !d.Get("isAvailable").Bool() {
				return true
			}
			sims = append(sims, Simulator{
				Name:    d.Get("name").String(),
				UDID:    d.Get("udid").String(),
				State:   d.Get("state").String(),
				Runtime: rt,
			})
			return true
		})
		return true
	})
	return sims
}

// shortRuntime trims the reverse-DNS prefix from a runtime identifier:
// com.apple.CoreSimulator.SimRuntime.iOS-17-2 -> iOS-17-2.
func shortRuntime(id string) string {
	if idx := strings.LastIndexByte(id, '.'); idx != -1 {
		return id[idx+1:]
	}
	return id
}

// BootedSimulator returns the first booted simulator, or nil when none is
// running.
func BootedSimulator(sims []Simulator) *Simulator {
	for i := range sims {
		if sims[i].State == "Booted" {
			return &sims[i]
		}
	}
	return nil
}

// PhysicalDevices lists connected devices via xctrace. Simulator entries in
// the listing are skipped.
func PhysicalDevices(ctx context.Context) ([]Device, error) {
	cmd := exec.CommandContext(ctx, "xcrun", "xctrace", "list", "devices")
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	return parseXCTraceDevices(string(out)), nil
}

// parseXCTraceDevices extracts devices from xctrace's sectioned listing. Only
// lines in the devices section before the simulators section are considered.
func parseXCTraceDevices(out string) []Device {
	var devices []Device
	inSimulators := false
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "== Simulators ==") {
			inSimulators = true
			continue
		}
		if strings.HasPrefix(line, "== ") {
			inSimulators = false
			continue
		}
		if inSimulators {
			continue
		}
		if m := xctraceDeviceRegex.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			devices = append(devices, Device{
				Name:    strings.TrimSpace(m[1]),
				Version: m[2],
				UDID:    m[3],
			})
		}
	}
	return devices
}
