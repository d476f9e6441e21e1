// File: utils/constants.go
package utils

// InboundRateLimitPrefix is the prefix used for per-sender rate limit keys.
const InboundRateLimitPrefix = "whatsapp:inbound:"
