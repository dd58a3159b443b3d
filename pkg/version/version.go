// Package version holds build-time version info injected via ldflags.
//
//	go build -ldflags "-X github.com/NicolasHaas/wirechat/pkg/version.tag=v0.1.0
//	  -X github.com/NicolasHaas/wirechat/pkg/version.commit=abc1234
//	  -X github.com/NicolasHaas/wirechat/pkg/version.date=2026-08-01"
package version

// Populated by -ldflags "-X ...". Defaults apply to local dev builds.
var (
	tag    = ""        // git tag, empty if not on a tag
	commit = "unknown" // short git commit SHA
	date   = "unknown" // build date (ISO 8601)
)

// String returns a human-readable version string: the tag when built on one,
// else the commit, else "dev".
func String() string {
	if tag != "" {
		return tag
	}
	if commit != "unknown" {
		return commit
	}
	return "dev"
}

// Full returns "tag (commit) built date" or a sensible fallback.
func Full() string {
	if tag != "" {
		return tag + " (" + commit + ") built " + date
	}
	if commit != "unknown" {
		return commit + " built " + date
	}
	return "dev"
}
