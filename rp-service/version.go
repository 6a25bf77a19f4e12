package rp_service

import "strings"

// FormatVersion joins the release version with the short commit, the commit
// date and build metadata, skipping the parts that are empty.
func FormatVersion(version string, gitCommit string, gitDate string, meta string) string {
	parts := []string{version}
	if len(gitCommit) > 8 {
		gitCommit = gitCommit[:8]
	}
	for _, p := range []string{gitCommit, gitDate, meta} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}
