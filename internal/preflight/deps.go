package preflight

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mashup/internal/config"
)

// Requirement defines an external binary a run relies on.
type Requirement struct {
	Name        string
	Command     string
	VersionArg  string
	Description string
	Optional    bool
}

// Status reports the availability of a binary.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Version     string `json:"version,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// Requirements lists the binaries configured for cfg.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Fetch.YtdlpBinary,
			VersionArg:  "--version",
			Description: "Required for audio downloads",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Assembly.FFmpegBinary,
			VersionArg:  "-version",
			Description: "Required for audio extraction and export",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Assembly.FFprobeBinary,
			VersionArg:  "-version",
			Description: "Required for duration probing",
		},
	}
}

// CheckSystemDeps evaluates every configured binary.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []Status {
	return CheckBinaries(ctx, Requirements(cfg))
}

// CheckBinaries evaluates the provided requirements and reports availability.
// When a requirement names a version flag, the first line of its output is
// recorded.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		if req.VersionArg != "" {
			status.Version = binaryVersion(ctx, resolved, req.VersionArg)
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable, non-optional binaries.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s.Name)
		}
	}
	return missing
}

func binaryVersion(ctx context.Context, binary, arg string) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, arg).Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}
