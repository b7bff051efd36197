package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/xcpipe/xcpipe/internal/config"
	"github.com/xcpipe/xcpipe/internal/diagnostics"
	"github.com/xcpipe/xcpipe/internal/errors"
	"github.com/xcpipe/xcpipe/internal/orchestrator"
	"github.com/xcpipe/xcpipe/internal/output"
	"github.com/xcpipe/xcpipe/internal/schema"
	"github.com/xcpipe/xcpipe/internal/xcodeproj"
)

// out is the shared output writer for all commands.
var out = output.New()

// discoveryTimeout bounds the helper tool calls made by the targets command.
const discoveryTimeout = 15 * time.Second

// applyVerbosityToOutput applies verbosity settings to the global writer so
// all commands report consistently.
func applyVerbosityToOutput(opts *GlobalOptions) {
	out.SetQuiet(opts.Quiet)
}

// loadConfig resolves the effective configuration: xcpipe.yaml (when present)
// with defaults applied, then command-line overrides on top.
func loadConfig(opts *GlobalOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		root := opts.ProjectPath
		if root == "" {
			root = "."
		}
		candidate := filepath.Join(root, config.DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Configf("cannot read %s: %v", path, err)
		}
		if err := schema.ValidateConfig(data); err != nil {
			return nil, errors.Configf("%s: %v", path, err)
		}
		loaded, warnings, err := config.LoadAndValidate(path)
		for _, warning := range warnings {
			out.WarningSimple("%s: %s", path, warning)
		}
		if err != nil {
			return nil, errors.Configf("%s: %v", path, err)
		}
		cfg = loaded
	}

	if opts.ProjectPath != "" {
		cfg.Project.Path = opts.ProjectPath
	}
	if opts.Scheme != "" {
		cfg.Project.Scheme = opts.Scheme
	}
	if opts.Configuration != "" {
		cfg.Build.Configuration = opts.Configuration
	}
	if opts.Destination != "" {
		cfg.Build.Destination = opts.Destination
	}
	if opts.TestFilter != "" {
		cfg.Build.TestFilter = opts.TestFilter
	}
	if opts.Timeout >= 0 {
		cfg.Build.TimeoutSeconds = opts.Timeout
	}

	return cfg, nil
}

// operationConfig turns the effective configuration into an invocation
// config, running discovery for anything the user left unset.
func operationConfig(cfg *config.Config) (orchestrator.Config, error) {
	proj := cfg.Project

	if proj.File == "" {
		found, err := xcodeproj.Find(proj.Path)
		if err != nil {
			return orchestrator.Config{}, err
		}
		proj.File = found.File
		proj.Workspace = found.Workspace
		if proj.Scheme == "" {
			proj.Scheme = xcodeproj.DetectScheme(found)
		}
	} else if proj.Scheme == "" {
		proj.Scheme = xcodeproj.DetectScheme(&xcodeproj.Project{
			Root:      proj.Path,
			File:      proj.File,
			Workspace: proj.Workspace,
			Name:      containerName(proj.File),
		})
	}

	return orchestrator.Config{
		ProjectPath:    proj.Path,
		ProjectFile:    proj.File,
		Workspace:      proj.Workspace,
		Scheme:         proj.Scheme,
		Configuration:  cfg.Build.Configuration,
		Destination:    cfg.Build.Destination,
		TimeoutSeconds: cfg.Build.TimeoutSeconds,
		TestFilter:     cfg.Build.TestFilter,
	}, nil
}

// containerName strips the container extension: MyApp.xcworkspace -> MyApp.
func containerName(file string) string {
	name := strings.TrimSuffix(file, ".xcworkspace")
	return strings.TrimSuffix(name, ".xcodeproj")
}

// interruptibleContext returns a context cancelled by SIGINT/SIGTERM, so a
// Ctrl-C turns into cooperative operation cancellation instead of an abrupt
// exit with an orphaned subprocess.
func interruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// renderFeed streams an operation's live output to the terminal. It returns
// when the operation reaches a terminal state and closes its feed.
func renderFeed(op *orchestrator.Operation, done chan<- struct{}) {
	for ev := range op.Events() {
		out.Progress(ev.Line)
	}
	close(done)
}

func cmdBuild(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printBuildUsage()
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	ocfg, err := operationConfig(cfg)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	ctx, stop := interruptibleContext()
	defer stop()

	op := orchestrator.NewBuild(ocfg)
	out.OperationStart("build", fmt.Sprintf("%s (%s)", ocfg.Scheme, ocfg.Configuration))

	feedDone := make(chan struct{})
	go renderFeed(op, feedDone)

	res, err := op.RunBuild(ctx)
	<-feedDone
	if err != nil {
		out.OperationFailed("build", err)
		return errors.GetExitCode(err)
	}

	printBuildSummary(out, res)
	if !res.Succeeded {
		return errors.ExitRuntimeError
	}
	out.OperationSuccess("build")
	return errors.ExitSuccess
}

func cmdTest(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printTestUsage()
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	ocfg, err := operationConfig(cfg)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	ctx, stop := interruptibleContext()
	defer stop()

	op := orchestrator.NewTest(ocfg)
	detail := ocfg.Scheme
	if ocfg.TestFilter != "" {
		detail = fmt.Sprintf("%s, filter %s", ocfg.Scheme, ocfg.TestFilter)
	}
	out.OperationStart("test", detail)

	feedDone := make(chan struct{})
	go renderFeed(op, feedDone)

	res, err := op.RunTests(ctx)
	<-feedDone
	if err != nil {
		out.OperationFailed("test", err)
		return errors.GetExitCode(err)
	}

	printTestRunSummary(out, res)
	if !res.Succeeded {
		return errors.ExitRuntimeError
	}
	return errors.ExitSuccess
}

func cmdDiagnose(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printDiagnoseUsage()
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	var logFindings []diagnostics.Finding
	if !opts.SkipBuild {
		ocfg, err := operationConfig(cfg)
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.GetExitCode(err)
		}

		ctx, stop := interruptibleContext()
		defer stop()

		op := orchestrator.NewBuild(ocfg)
		out.OperationStart("build", fmt.Sprintf("%s (%s)", ocfg.Scheme, ocfg.Configuration))

		feedDone := make(chan struct{})
		go renderFeed(op, feedDone)

		res, err := op.RunBuild(ctx)
		<-feedDone
		if err != nil {
			out.OperationFailed("build", err)
			return errors.GetExitCode(err)
		}

		logFindings = diagnostics.FromBuildEvents(append(res.Errors, res.Warnings...))
	}

	out.OperationStart("scan", cfg.Project.Path)
	scanner := diagnostics.NewScanner(cfg.Project.Path, cfg.Diagnostics.LargeFileThreshold, cfg.Diagnostics.Exclude)
	summary, err := scanner.Scan()
	if err != nil {
		out.OperationFailed("scan", err)
		return errors.GetExitCode(err)
	}

	findings := diagnostics.Merge(logFindings, summary.Findings)
	printFindings(out, findings, summary)

	for _, f := range findings {
		if f.Severity == diagnostics.SeverityCritical {
			return errors.ExitRuntimeError
		}
	}
	return errors.ExitSuccess
}

func cmdTargets(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printTargetsUsage()
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	proj, err := xcodeproj.Find(cfg.Project.Path)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	kind := "project"
	if proj.Workspace {
		kind = "workspace"
	}
	out.Section("Project")
	out.Println("  %s (%s)", proj.File, kind)
	if bundleID := xcodeproj.DetectBundleID(proj); bundleID != "" {
		out.Println("  bundle id: %s", bundleID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), discoveryTimeout)
	defer cancel()

	out.Section("Schemes")
	out.List(xcodeproj.ListSchemes(ctx, proj))

	out.Section("Simulators")
	sims, err := xcodeproj.Simulators(ctx)
	switch {
	case err != nil:
		out.Info("  unavailable: %v", err)
	case len(sims) == 0:
		out.Info("  none available")
	default:
		rows := make([][]string, 0, len(sims))
		for _, s := range sims {
			rows = append(rows, []string{s.Name, s.Runtime, s.State, s.UDID})
		}
		out.Table([]string{"NAME", "RUNTIME", "STATE", "UDID"}, rows)
	}

	out.Section("Devices")
	devices, err := xcodeproj.PhysicalDevices(ctx)
	switch {
	case err != nil:
		out.Info("  unavailable: %v", err)
	case len(devices) == 0:
		out.Info("  none connected")
	default:
		rows := make([][]string, 0, len(devices))
		for _, d := range devices {
			rows = append(rows, []string{d.Name, d.Version, d.UDID})
		}
		out.Table([]string{"NAME", "OS", "UDID"}, rows)
	}

	return errors.ExitSuccess
}

func cmdConfig(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printConfigUsage()
		return 0
	}
	if len(args) > 0 && args[0] != "validate" {
		out.ErrorPrefix("unknown config subcommand %q", args[0])
		out.Hint("run 'xcpipe config --help' for usage")
		return errors.ExitConfigError
	}

	path := opts.ConfigPath
	if path == "" {
		root := opts.ProjectPath
		if root == "" {
			root = "."
		}
		path = filepath.Join(root, config.DefaultFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		out.ErrorPrefix("cannot read %s: %v", path, err)
		return errors.ExitConfigError
	}
	if err := schema.ValidateConfig(data); err != nil {
		out.ErrorPrefix("%s: %v", path, err)
		return errors.ExitConfigError
	}

	_, warnings, err := config.LoadAndValidate(path)
	for _, warning := range warnings {
		out.WarningSimple("%s: %s", path, warning)
	}
	if err != nil {
		out.ErrorPrefix("%s: %v", path, err)
		return errors.ExitConfigError
	}

	out.Success("%s is valid", path)
	return errors.ExitSuccess
}

func printBuildUsage() {
	out.HelpTitle("xcpipe build - clean and build the project")
	out.HelpSection("Usage:")
	out.HelpUsage("xcpipe build [--scheme <name>] [--configuration <name>] [--destination <id>] [--timeout <seconds>]")
	out.HelpSection("Description:")
	out.Println("  Runs a clean build, streams compiler output live, and reports errors")
	out.Println("  and warnings with file and line information.")
	out.Println("")
}

func printTestUsage() {
	out.HelpTitle("xcpipe test - run the test suite")
	out.HelpSection("Usage:")
	out.HelpUsage("xcpipe test [--filter <pattern>] [--destination <id>] [--timeout <seconds>]")
	out.HelpSection("Description:")
	out.Println("  Runs the tests, streams runner output live, and summarizes per-case")
	out.Println("  results including failure details.")
	out.Println("")
}

func printDiagnoseUsage() {
	out.HelpTitle("xcpipe diagnose - report build diagnostics and source findings")
	out.HelpSection("Usage:")
	out.HelpUsage("xcpipe diagnose [--skip-build]")
	out.HelpSection("Description:")
	out.Println("  Builds the project to collect compiler diagnostics, then scans the")
	out.Println("  sources for force unwraps, debug prints, and oversized files, and")
	out.Println("  merges everything into one findings report.")
	out.Println("")
}

func printTargetsUsage() {
	out.HelpTitle("xcpipe targets - show the discovered project and destinations")
	out.HelpSection("Usage:")
	out.HelpUsage("xcpipe targets [--path <dir>]")
	out.Println("")
}

func printConfigUsage() {
	out.HelpTitle("xcpipe config - validate the configuration")
	out.HelpSection("Usage:")
	out.HelpUsage("xcpipe config validate [--config <path>]")
	out.Println("")
}
