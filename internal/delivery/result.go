// Package delivery runs the post-persistence side effects for a lead: the
// CRM webhook, the Meta conversion event, and the internal notification
// email. Channels are isolated: one failing never blocks another.
package delivery

// Result is the uniform outcome of a single outbound delivery attempt.
type Result struct {
	Success    bool
	StatusCode int
	Body       string
}

// maxDiagnosticLen caps the stored response body or error diagnostic.
const maxDiagnosticLen = 500

func truncateDiagnostic(s string) string {
	if len(s) > maxDiagnosticLen {
		return s[:maxDiagnosticLen]
	}
	return s
}
