package deploy

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/workflow-use/suitectl/pkg/exec"
)

// ToolStatus reports one prerequisite tool check.
type ToolStatus struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Version string `json:"version,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// tool is one prerequisite with an optional minimum version. A zero
// minMajor means any version is acceptable.
type tool struct {
	name     string
	minMajor int
	minMinor int
	label    string
}

var requiredTools = []tool{
	{name: "python3", minMajor: 3, minMinor: 11, label: "Python 3.11+"},
	{name: "git", label: "Git"},
	{name: "node", minMajor: 18, label: "Node.js 18+"},
	{name: "npm", minMajor: 9, label: "npm 9+"},
}

// CheckPrerequisites probes every tool the suite needs: python3 3.11+,
// git, node 18+ and npm 9+. It never returns an error; each tool's
// result carries its own status.
func CheckPrerequisites(ctx context.Context, runner exec.Runner) []ToolStatus {
	statuses := make([]ToolStatus, 0, len(requiredTools))
	for _, t := range requiredTools {
		statuses = append(statuses, checkTool(ctx, runner, t))
	}
	return statuses
}

func checkTool(ctx context.Context, runner exec.Runner, t tool) ToolStatus {
	out, err := runner.Run(ctx, t.name, "--version")
	if err != nil {
		return ToolStatus{Name: t.name, Detail: "not found"}
	}

	version := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	status := ToolStatus{Name: t.name, Version: version}

	if t.minMajor == 0 {
		status.OK = true
		return status
	}

	major, minor, ok := parseVersion(version)
	if !ok {
		status.Detail = fmt.Sprintf("could not parse version from %q", version)
		return status
	}
	if major > t.minMajor || (major == t.minMajor && minor >= t.minMinor) {
		status.OK = true
		return status
	}
	status.Detail = fmt.Sprintf("found %d.%d, need %s", major, minor, t.label)
	return status
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

// parseVersion extracts the first major.minor pair from a version
// banner such as "Python 3.11.9", "v18.19.0" or "git version 2.43.0".
func parseVersion(s string) (major, minor int, ok bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	major, _ = strconv.Atoi(m[1])
	minor, _ = strconv.Atoi(m[2])
	return major, minor, true
}
