package tracing

// Span names and attribute keys for script runs.
const (
	SpanScriptRun = "script.run"
	SpanSelect    = "script.select"

	AttrScriptName  = "script.name"
	AttrScriptEntry = "script.entry"
	AttrRunID       = "script.run_id"
	AttrInteractive = "script.interactive"
	AttrCancelled   = "script.cancelled"
	AttrErrorType   = "error.type"

	EventConfigLoaded = "config.loaded"
)
