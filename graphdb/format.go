package graphdb

import (
	"fmt"
	"regexp"
	"strings"
)

// PrefixHeader declares the prefixes shared by queries and update
// statements: the configured namespace prefix, the synthetic concept
// prefix, and the common RDF vocabularies.
func PrefixHeader(prefix string, namespace string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PREFIX %s: <%s>\n", prefix, namespace)
	if prefix != "concept" {
		fmt.Fprintf(&b, "PREFIX concept: <%s>\n", namespace)
	}
	b.WriteString("PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>\n")
	b.WriteString("PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>\n")
	b.WriteString("PREFIX schema: <http://schema.org/>\n")
	return b.String()
}

// nonLocalNameChar matches characters that cannot appear in a bare local
// name. Word characters plus Hangul syllables and jamo are preserved;
// everything else is replaced with an underscore.
var nonLocalNameChar = regexp.MustCompile(`[^A-Za-z0-9_\x{AC00}-\x{D7A3}\x{1100}-\x{11FF}\x{3130}-\x{318F}]`)

// FormatURI formats a value for the subject or predicate position.
// A value already wrapped in angle brackets, or containing a colon
// (prefixed form), passes through unchanged. Anything else is treated as a
// bare local name under the default namespace prefix.
func FormatURI(value string, prefix string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
		return trimmed
	}
	if strings.Contains(trimmed, ":") {
		return trimmed
	}
	return prefix + ":" + SanitizeLocalName(trimmed)
}

// FormatObject formats a value for the object position. Values carrying a
// language tag, already quoted, already a URI, or already prefixed pass
// through unchanged; anything else is wrapped as a plain literal.
func FormatObject(value string, prefix string) string {
	trimmed := strings.TrimSpace(value)
	if strings.Contains(trimmed, "@") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) && len(trimmed) >= 2 {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
		return trimmed
	}
	if strings.Contains(trimmed, ":") {
		return trimmed
	}
	return `"` + strings.ReplaceAll(trimmed, `"`, `\"`) + `"`
}

// SanitizeLocalName replaces every character outside the local name
// alphabet with an underscore.
func SanitizeLocalName(value string) string {
	return nonLocalNameChar.ReplaceAllString(value, "_")
}

// EscapeLiteral escapes a string for safe interpolation into a SPARQL
// string literal: backslashes, quotes, newlines, carriage returns and tabs.
func EscapeLiteral(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`'`, `\'`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return replacer.Replace(value)
}
