package config

import "time"

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Mongo connection timeouts
const (
	MongoConnectTimeout = 10 * time.Second
	MongoPingTimeout    = 5 * time.Second
)

// Credential policy
const (
	MinPasswordLength = 6
	BcryptCost        = 12
)

// Login rate limiting (per client IP)
const (
	LoginRateLimitPerMin = 5
)
