// Package genome normalizes heterogeneous genomic input formats into a
// canonical ACGT symbol sequence and derives per-window composition
// statistics from it.
package genome

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Format identifies a supported input file format
type Format int

const (
	FormatAuto Format = iota
	FormatFASTA
	FormatFASTQ
	Format23andMe
	FormatRaw
)

func (f Format) String() string {
	switch f {
	case FormatFASTA:
		return "fasta"
	case FormatFASTQ:
		return "fastq"
	case Format23andMe:
		return "23andme"
	case FormatRaw:
		return "raw"
	default:
		return "auto"
	}
}

// DecodeError indicates input bytes that cannot be interpreted as text
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable input: %s", e.Reason)
}

// vendor marker that identifies 23andMe raw data exports
const marker23andMe = "23andMe"

// Parse normalizes raw input into an uppercase ACGT sequence. With FormatAuto
// the format is detected from the content. The only rejected input is bytes
// that are not valid text; any sequence, including one that strips to empty,
// parses successfully.
func Parse(raw []byte, format Format) (string, error) {
	if !utf8.Valid(raw) {
		return "", &DecodeError{Reason: "not valid UTF-8"}
	}

	lines := strings.Split(string(raw), "\n")
	if format == FormatAuto {
		format = detectFormat(lines)
	}

	switch format {
	case FormatFASTA:
		return parseFASTA(lines), nil
	case FormatFASTQ:
		return parseFASTQ(lines), nil
	case Format23andMe:
		return parse23andMe(lines), nil
	default:
		return parseRaw(lines), nil
	}
}

func detectFormat(lines []string) Format {
	for _, l := range lines {
		if strings.HasPrefix(l, ">") {
			return FormatFASTA
		}
	}
	for _, l := range lines {
		if strings.HasPrefix(l, "@") {
			return FormatFASTQ
		}
	}
	for _, l := range lines {
		if strings.Contains(l, marker23andMe) {
			return Format23andMe
		}
	}
	return FormatRaw
}

func parseFASTA(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		if strings.HasPrefix(l, ">") {
			continue
		}
		b.WriteString(strings.ToUpper(strings.TrimSpace(l)))
	}
	return b.String()
}

func parseFASTQ(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		// Sequence line of every 4-line record
		if i%4 == 1 {
			b.WriteString(strings.ToUpper(strings.TrimSpace(l)))
		}
	}
	return b.String()
}

func parse23andMe(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		if strings.HasPrefix(l, "#") || strings.TrimSpace(l) == "" {
			continue
		}
		parts := strings.Split(strings.TrimSpace(l), "\t")
		if len(parts) < 4 {
			continue
		}
		// Only single-base genotype calls count; multi-character columns
		// ("AT", "--") are skipped whole
		call := strings.ToUpper(strings.TrimSpace(parts[3]))
		if len(call) == 1 && isBase(rune(call[0])) {
			b.WriteString(call)
		}
	}
	return b.String()
}

func parseRaw(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		for _, r := range strings.ToUpper(l) {
			if isBase(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func isBase(r rune) bool {
	return r == 'A' || r == 'C' || r == 'G' || r == 'T'
}
