// Package cli provides command-line interface functionality for xcpipe.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xcpipe/xcpipe/internal/errors"
	"github.com/xcpipe/xcpipe/internal/output"
)

// Version is set at build time.
var Version = "dev"

// wantsHelp returns true if args contain -h or --help.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "--version", "version":
		fmt.Printf("xcpipe %s\n", Version)
		return 0
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	// Re-extract command after flag parsing
	if len(remaining) == 0 {
		printUsage()
		return 0
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	switch cmd {
	case "build":
		return cmdBuild(cmdArgs, opts)
	case "test":
		return cmdTest(cmdArgs, opts)
	case "diagnose":
		return cmdDiagnose(cmdArgs, opts)
	case "targets":
		return cmdTargets(cmdArgs, opts)
	case "config":
		return cmdConfig(cmdArgs, opts)
	default:
		out.ErrorPrefix("unknown command %q", cmd)
		out.Hint("run 'xcpipe help' for usage")
		return errors.ExitConfigError
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	ConfigPath    string // explicit xcpipe.yaml location
	ProjectPath   string // overrides project.path
	Scheme        string
	Configuration string
	Destination   string
	TestFilter    string
	Timeout       int  // seconds; -1 means unset
	SkipBuild     bool // diagnose: source scan only
	Quiet         bool
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Manual parsing is used instead of the stdlib flag package because flags can
// appear anywhere in the argument list, not just before the command, and
// custom error messages with usage hints are needed.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{Timeout: -1}
	var remaining []string

	takesValue := func(name string, i int) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		return args[i+1], nil
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
		case arg == "--skip-build":
			opts.SkipBuild = true
			i++
		case arg == "--config":
			v, err := takesValue("--config", i)
			if err != nil {
				return nil, nil, err
			}
			opts.ConfigPath = v
			i += 2
		case strings.HasPrefix(arg, "--config="):
			opts.ConfigPath = strings.TrimPrefix(arg, "--config=")
			i++
		case arg == "--path":
			v, err := takesValue("--path", i)
			if err != nil {
				return nil, nil, err
			}
			opts.ProjectPath = v
			i += 2
		case strings.HasPrefix(arg, "--path="):
			opts.ProjectPath = strings.TrimPrefix(arg, "--path=")
			i++
		case arg == "--scheme":
			v, err := takesValue("--scheme", i)
			if err != nil {
				return nil, nil, err
			}
			opts.Scheme = v
			i += 2
		case strings.HasPrefix(arg, "--scheme="):
			opts.Scheme = strings.TrimPrefix(arg, "--scheme=")
			i++
		case arg == "--configuration":
			v, err := takesValue("--configuration", i)
			if err != nil {
				return nil, nil, err
			}
			opts.Configuration = v
			i += 2
		case strings.HasPrefix(arg, "--configuration="):
			opts.Configuration = strings.TrimPrefix(arg, "--configuration=")
			i++
		case arg == "--destination":
			v, err := takesValue("--destination", i)
			if err != nil {
				return nil, nil, err
			}
			opts.Destination = v
			i += 2
		case strings.HasPrefix(arg, "--destination="):
			opts.Destination = strings.TrimPrefix(arg, "--destination=")
			i++
		case arg == "--filter":
			v, err := takesValue("--filter", i)
			if err != nil {
				return nil, nil, err
			}
			opts.TestFilter = v
			i += 2
		case strings.HasPrefix(arg, "--filter="):
			opts.TestFilter = strings.TrimPrefix(arg, "--filter=")
			i++
		case arg == "--timeout":
			v, err := takesValue("--timeout", i)
			if err != nil {
				return nil, nil, err
			}
			if err := parseTimeout(v, opts); err != nil {
				return nil, nil, err
			}
			i += 2
		case strings.HasPrefix(arg, "--timeout="):
			if err := parseTimeout(strings.TrimPrefix(arg, "--timeout="), opts); err != nil {
				return nil, nil, err
			}
			i++
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	applyVerbosityToOutput(opts)

	return opts, remaining, nil
}

func parseTimeout(v string, opts *GlobalOptions) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid --timeout value %q: must be a non-negative number of seconds", v)
	}
	opts.Timeout = n
	return nil
}

const widthFlag = 24

func printUsage() {
	w := output.New()

	w.HelpTitle("xcpipe - Xcode build and test orchestration")

	w.HelpSection("Usage:")
	w.HelpUsage("xcpipe <command> [flags]")

	w.HelpSection("Commands:")
	w.HelpCommand("build", "Clean and build the project, streaming compiler output", 10)
	w.HelpCommand("test", "Run the test suite and summarize per-case results", 10)
	w.HelpCommand("diagnose", "Report build diagnostics and source-level findings", 10)
	w.HelpCommand("targets", "Show the discovered project, schemes, and destinations", 10)
	w.HelpCommand("config", "Validate the xcpipe.yaml configuration", 10)
	w.HelpCommand("version", "Show version information", 10)

	w.HelpSection("Global Flags:")
	w.HelpFlag("--config <path>", "Configuration file (default xcpipe.yaml at --path)", widthFlag)
	w.HelpFlag("--path <dir>", "Project checkout root (default .)", widthFlag)
	w.HelpFlag("--scheme <name>", "Scheme to build or test", widthFlag)
	w.HelpFlag("--configuration <name>", "Build configuration (default Debug)", widthFlag)
	w.HelpFlag("--destination <id>", "Simulator or device identifier", widthFlag)
	w.HelpFlag("--filter <pattern>", "Run only matching tests (test command)", widthFlag)
	w.HelpFlag("--timeout <seconds>", "Kill the invocation after this long", widthFlag)
	w.HelpFlag("--skip-build", "diagnose: source scan only, no build", widthFlag)
	w.HelpFlag("-q, --quiet", "Minimal output (summaries and errors only)", widthFlag)
	w.HelpFlag("-h, --help", "Show this help", widthFlag)
	w.HelpFlag("--version", "Show version", widthFlag)

	w.HelpSection("Examples:")
	w.HelpExample("xcpipe build", "Build with discovered scheme and settings")
	w.HelpExample("xcpipe test --filter MyAppTests/LoginTests", "Run one test suite")
	w.HelpExample("xcpipe build --scheme MyApp --configuration Release", "Release build")
	w.HelpExample("xcpipe diagnose --skip-build", "Scan sources without building")
	w.Println("")
}
