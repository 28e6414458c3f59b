// Package models holds rate limit results and bucket keys.
package models

import (
	"strings"
	"time"
)

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is in seconds and only set when the request is denied.
	RetryAfter int
}

// SanitizeKeySegment escapes the key delimiter so a caller-controlled
// segment cannot spill into a neighbouring bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// MintCallerKey buckets mint attempts per authenticated identity.
func MintCallerKey(identity string) string {
	return "mint:caller:" + SanitizeKeySegment(strings.ToLower(identity))
}

// MintIPKey buckets mint attempts per client IP when no caller is known.
func MintIPKey(ip string) string {
	return "mint:ip:" + SanitizeKeySegment(ip)
}

// ExceededResponse is the 429 body. Error and ErrorDescription follow the
// shared error envelope.
type ExceededResponse struct {
	Error            string    `json:"error"`
	ErrorDescription string    `json:"error_description"`
	RetryAfter       int       `json:"retry_after"`
	ResetAt          time.Time `json:"reset_at"`
}
