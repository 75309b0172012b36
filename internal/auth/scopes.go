package auth

// Known OAuth scopes used by the tracker API.
const (
	ScopeTrackerRead  = "tracker:read"
	ScopeTrackerWrite = "tracker:write"
)
