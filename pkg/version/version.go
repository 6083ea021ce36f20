package version

// Build holds the build identifier, injected via -ldflags. Default "dev".
var Build = "dev"

// String returns the tool name with its build identifier.
func String() string {
	return "sir-check " + Build
}
