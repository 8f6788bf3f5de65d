package middleware

import "regexp"

// Strictness selects the screening pattern set. The minimal level runs a
// reduced keyword check and skips rate limiting, for deployments where the
// full pipeline is too expensive or too noisy.
type Strictness int

const (
	StrictnessFull Strictness = iota
	StrictnessMinimal
)

// ParseStrictness maps a config string to a Strictness level. Anything other
// than "minimal" selects the full pipeline.
func ParseStrictness(s string) Strictness {
	if s == "minimal" {
		return StrictnessMinimal
	}
	return StrictnessFull
}

// sqlInjectionPatterns flags SQL keywords in structural combination, comment
// markers, stored-procedure escapes, and always-true tautologies.
var sqlInjectionPatterns = compilePatterns(
	`(?i)\bunion\b.*\bselect\b`,
	`(?i)\bselect\b.*\bfrom\b`,
	`(?i)\binsert\b.*\binto\b`,
	`(?i)\bupdate\b.*\bset\b`,
	`(?i)\bdelete\b.*\bfrom\b`,
	`(?i)\bdrop\b.*\btable\b`,
	`(?i)\balter\b.*\btable\b`,
	`(?i)\bcreate\b.*\btable\b`,
	`(?i)\b(exec|execute)\b`,
	`(?i)\bwaitfor\b.*\bdelay\b`,
	`(?i)\bxp_cmdshell\b`,
	`(?i)\bsp_executesql\b`,
	`--|/\*|\*/`,
	`(?i)\b(or|and)\b\s*'?\d+'?\s*=\s*'?\d+`,
)

// sqlInjectionPatternsMinimal is the reduced keyword-only set.
var sqlInjectionPatternsMinimal = compilePatterns(
	`(?i)(union|select|insert|update|delete|drop|create|alter|exec)`,
)

// xssPatterns flags script tags, script-scheme URLs, inline event handlers,
// and embedding tags.
var xssPatterns = compilePatterns(
	`(?i)<script\b`,
	`(?i)javascript:`,
	`(?i)vbscript:`,
	`(?i)\bon(load|error|click|mouseover)\s*=`,
	`(?i)<(iframe|object|embed|link|meta|style)\b`,
)

var xssPatternsMinimal = compilePatterns(
	`(?i)<script`,
	`(?i)javascript:`,
	`(?i)\bon\w+\s*=`,
)

// suspiciousUserAgents matches automation and language-runtime identifiers.
// Hits are logged but never block.
var suspiciousUserAgents = compilePatterns(
	`(?i)bot`,
	`(?i)crawler`,
	`(?i)spider`,
	`(?i)scraper`,
	`(?i)curl`,
	`(?i)wget`,
	`(?i)python`,
	`(?i)php`,
	`(?i)java`,
	`(?i)perl`,
)

// suspiciousProxyHeaders are logged when present; their presence usually
// means the request tried to influence IP resolution.
var suspiciousProxyHeaders = []string{"X-Forwarded-For", "X-Real-IP", "X-Originating-IP"}

func (s Strictness) sqlPatterns() []*regexp.Regexp {
	if s == StrictnessMinimal {
		return sqlInjectionPatternsMinimal
	}
	return sqlInjectionPatterns
}

func (s Strictness) xssPatterns() []*regexp.Regexp {
	if s == StrictnessMinimal {
		return xssPatternsMinimal
	}
	return xssPatterns
}

func matchesAny(patterns []*regexp.Regexp, value string) bool {
	for _, p := range patterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}
