// Package output provides ANSI styling helpers for the report tables.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Style is a pair of ANSI fragments wrapped around an already padded cell or
// line. The suffix restores only what the prefix changed, so a row-wide
// background survives individually styled cells.
type Style struct {
	Prefix string
	Suffix string
}

// Empty reports whether the style carries no escape sequences.
func (s Style) Empty() bool {
	return s.Prefix == "" && s.Suffix == ""
}

// Apply wraps the text in the style's fragments.
func (s Style) Apply(text string) string {
	if s.Empty() {
		return text
	}
	return s.Prefix + text + s.Suffix
}

// Palette of the report tables.
const (
	stripeBackground  = "#1a1a1a"
	missingAnnotation = "#EEA257"
	gapForeground     = "#555555"
	negativeColor     = "1"
	positiveColor     = "2"
)

// Styles builds escape sequences for a detected color profile.
type Styles struct {
	profile termenv.Profile
}

// NewStyles detects the color profile for the writer. The report commands
// often run with stdout piped back into the invoking process while stderr
// still points at the user's terminal, so a non-TTY writer falls back to
// stderr's profile.
func NewStyles(w io.Writer) *Styles {
	profile := termenv.NewOutput(w).Profile
	if profile == termenv.Ascii {
		profile = termenv.NewOutput(os.Stderr).Profile
	}
	return &Styles{profile: profile}
}

// Enabled reports whether any styling will be emitted.
func (s *Styles) Enabled() bool {
	return s.profile != termenv.Ascii
}

// Reset returns the full attribute reset sequence, or an empty string when
// styling is disabled.
func (s *Styles) Reset() string {
	if !s.Enabled() {
		return ""
	}
	return termenv.CSI + termenv.ResetSeq + "m"
}

// Underline styles header cells. The suffix is a full reset, matching the
// per-cell underlining of the table header.
func (s *Styles) Underline() Style {
	if !s.Enabled() {
		return Style{}
	}
	return Style{
		Prefix: termenv.CSI + termenv.UnderlineSeq + "m",
		Suffix: termenv.CSI + termenv.ResetSeq + "m",
	}
}

// Stripe is the alternating row background. It has no suffix; the renderer
// resets at the end of the line so the background spans the full row.
func (s *Styles) Stripe() Style {
	return Style{Prefix: s.sequence(stripeBackground, true)}
}

// MissingAnnotation highlights rows whose tracked time has no annotation.
func (s *Styles) MissingAnnotation() Style {
	return s.foreground(missingAnnotation)
}

// Gap dims filler rows between days.
func (s *Styles) Gap() Style {
	return s.foreground(gapForeground)
}

// Negative colors values below the expected balance.
func (s *Styles) Negative() Style {
	return s.foreground(negativeColor)
}

// Positive colors values above the expected balance.
func (s *Styles) Positive() Style {
	return s.foreground(positiveColor)
}

// foreground returns a foreground style whose suffix restores the default
// foreground without touching the background.
func (s *Styles) foreground(color string) Style {
	prefix := s.sequence(color, false)
	if prefix == "" {
		return Style{}
	}
	return Style{Prefix: prefix, Suffix: termenv.CSI + "39m"}
}

func (s *Styles) sequence(color string, background bool) string {
	c := s.profile.Color(color)
	if c == nil {
		return ""
	}
	seq := c.Sequence(background)
	if seq == "" {
		return ""
	}
	return termenv.CSI + seq + "m"
}
