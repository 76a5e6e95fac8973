package op_service

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
	Meta      = "dev"
)

func DefaultFormatVersion() string {
	return FormatVersion(Version, GitCommit, GitDate, Meta)
}

// FormatVersion joins the release version with the optional build metadata,
// e.g. "v0.1.0-1a2b3c4d-1700000000-dev".
func FormatVersion(version string, gitCommit string, gitDate string, meta string) string {
	v := version
	if gitCommit != "" {
		v += "-" + shortCommit(gitCommit)
	}
	if gitDate != "" {
		v += "-" + gitDate
	}
	if meta != "" {
		v += "-" + meta
	}
	return v
}

func shortCommit(commit string) string {
	if len(commit) >= 8 {
		return commit[:8]
	}
	return commit
}
