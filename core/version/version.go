package version

// Version is the current TestSmith release.
var Version = "v1.2.0"
