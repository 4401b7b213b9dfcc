package jenkins

// Function exports for unit testing internal logic.
var (
	JobPath    = jobPath
	ParseBuild = parseBuild
	RetryAfter = retryAfter
)
