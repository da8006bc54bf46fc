package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/output"
)

// devVersionString is the version reported by builds without ldflags.
const devVersionString = "dev"

// BuildInfo is set at build time through ldflags.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

//nolint:gochecknoglobals // Build metadata is injected once from main
var buildInfo BuildInfo

// SetBuildInfo records the build metadata reported by the version command.
func SetBuildInfo(version, commit, date string) {
	buildInfo = BuildInfo{Version: version, Commit: commit, Date: date}
	rootCmd.Version = formatVersion(buildInfo)
}

// formatVersion renders build info, filling in placeholders for missing fields.
func formatVersion(info BuildInfo) string {
	version := info.Version
	if version == "" {
		version = devVersionString
	}
	commit := info.Commit
	if commit == "" {
		commit = "unknown"
	}
	date := info.Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the deeplink version, commit, and build date with the Go runtime and platform.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cc := GetCmdContext(cmd)
		w := cmd.OutOrStdout()

		if cc.Formatter.IsJSON() {
			return output.WriteJSON(w, struct {
				BuildInfo
				GoVersion string `json:"go_version"`
				Platform  string `json:"platform"`
			}{
				BuildInfo: buildInfo,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			})
		}

		out(w, "deeplink %s\n", formatVersion(buildInfo))
		out(w, "%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Annotations = map[string]string{annotationTolerateConfig: "true"}
}
