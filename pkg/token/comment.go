package token

// Comment is a discarded `//` comment line, kept for tooling.
// Comments are line-anchored: only lines whose first non-blank characters
// are `//` are comments, and the whole line is dropped.
type Comment struct {
	Text string // includes the leading //
	Span Span
}
