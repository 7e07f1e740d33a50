package api

// SessionHeader carries the client session ID on requests that need one.
const SessionHeader = "X-Session-ID"

// Cache-Control header values.
const (
	CacheOneHour = "public, max-age=3600"
	CacheNoStore = "no-cache"
)
