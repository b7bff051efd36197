// Package xcodeproj discovers project containers, schemes, bundle
// identifiers, and run destinations for a checkout. Everything that parses
// tool output is split from the code that runs the tool so the parsing can
// be tested against captured fixtures.
package xcodeproj

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/xcpipe/xcpipe/internal/errors"
)

// Project is a discovered build container.
type Project struct {
	Root      string // directory that was searched
	File      string // MyApp.xcworkspace or MyApp.xcodeproj, relative to Root
	Workspace bool
	Name      string // container name without extension
}

// Find locates the build container directly under root. A workspace wins
// over a bare project when both exist, matching how the build tool itself
// resolves ambiguity.
func Find(root string) (*Project, error) {
	workspaces, err := filepath.Glob(filepath.Join(root, "*.xcworkspace"))
	if err != nil {
		return nil, errors.Wrap(err, "searching for workspaces")
	}
	if len(workspaces) > 0 {
		file := filepath.Base(workspaces[0])
		return &Project{
			Root:      root,
			File:      file,
			Workspace: true,
			Name:      strings.TrimSuffix(file, ".xcworkspace"),
		}, nil
	}

	projects, err := filepath.Glob(filepath.Join(root, "*.xcodeproj"))
	if err != nil {
		return nil, errors.Wrap(err, "searching for projects")
	}
	if len(projects) > 0 {
		file := filepath.Base(projects[0])
		return &Project{
			Root: root,
			File: file,
			Name: strings.TrimSuffix(file, ".xcodeproj"),
		}, nil
	}

	return nil, errors.NotFound("project or workspace", root)
}

// DetectScheme resolves the scheme to build. Shared scheme files on disk are
// authoritative; when none exist the container name is used, which is the
// default scheme name for single-target projects.
func DetectScheme(p *Project) string {
	candidates := []string{
		filepath.Join(p.Root, p.Name+".xcodeproj", "xcshareddata", "xcschemes"),
		filepath.Join(p.Root, p.File, "xcshareddata", "xcschemes"),
	}
	for _, dir := range candidates {
		schemes, err := filepath.Glob(filepath.Join(dir, "*.xcscheme"))
		if err != nil || len(schemes) == 0 {
			continue
		}
		// Prefer a scheme matching the container name; otherwise first found.
		for _, s := range schemes {
			if strings.TrimSuffix(filepath.Base(s), ".xcscheme") == p.Name {
				return p.Name
			}
		}
		return strings.TrimSuffix(filepath.Base(schemes[0]), ".xcscheme")
	}
	return p.Name
}

// ListSchemes asks the build tool for the container's schemes. It degrades to
// DetectScheme's answer when the tool is unavailable.
func ListSchemes(ctx context.Context, p *Project) []string {
	args := []string{"-list", "-json"}
	if p.Workspace {
		args = append(args, "-workspace", p.File)
	} else {
		args = append(args, "-project", p.File)
	}
	cmd := exec.CommandContext(ctx, "xcodebuild", args...)
	cmd.Dir = p.Root
	out, err := cmd.Output()
	if err != nil {
		return []string{DetectScheme(p)}
	}
	if schemes := parseSchemeList(string(out)); len(schemes) > 0 {
		return schemes
	}
	return []string{DetectScheme(p)}
}

// parseSchemeList extracts scheme names from `xcodebuild -list -json`
// output, which nests them under either "project" or "workspace".
func parseSchemeList(jsonOut string) []string {
	var schemes []string
	for _, key := range []string{"project.schemes", "workspace.schemes"} {
		gjson.Get(jsonOut, key).ForEach(func(_, value gjson.Result) bool {
			schemes = append(schemes, value.String())
			return true
		})
	}
	return schemes
}

// DetectBundleID extracts the product bundle identifier from the project's
// pbxproj. Returns empty when none is declared (e.g. it comes from an
// xcconfig).
func DetectBundleID(p *Project) string {
	pbxproj := filepath.Join(p.Root, p.Name+".xcodeproj", "project.pbxproj")
	data, err := os.ReadFile(pbxproj)
	if err != nil {
		return ""
	}
	return parseBundleID(string(data))
}

func parseBundleID(pbxproj string) string {
	if m := bundleIDRegex.FindStringSubmatch(pbxproj); m != nil {
		return m[1]
	}
	return ""
}
