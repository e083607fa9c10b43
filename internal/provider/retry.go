package provider

import "strings"

// maxRetries is the number of additional attempts an adapter makes internally
// when it hits a rate limit, independent of the orchestrator's own retry
// schedule (spec §4.E) which wraps a whole Invoke call.
const maxRetries = 3

// isRateLimitError detects the rate-limit/quota substrings the teacher's
// clients already watch for across providers that phrase it differently.
func isRateLimitError(s string) bool {
	for _, marker := range []string{"429", "RESOURCE_EXHAUSTED", "rate limit", "quota"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// backoffSeconds returns the attempt-indexed backoff used between an
// adapter's own internal retries (1s, 2s, 4s, ...).
func backoffSeconds(attempt int) int {
	return 1 << uint(attempt-1)
}
