// Package equation extracts the identifiers an equation refers to.
//
// The scanner is lexical, not a parser: it finds runs of identifier
// characters and quoted names and subtracts the names the integrator
// provides itself.
package equation

import (
	"regexp"
	"strings"
)

var (
	quotedPattern = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	identPattern  = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_ \t]*`)
)

// quotePlaceholder replaces quoted names during the lexical pass. It can never
// be part of an identifier run.
const quotePlaceholder = "\x00"

// DefaultReservedNames are the math functions the integrator evaluates
// natively. They are never reported as identifiers.
var DefaultReservedNames = []string{
	"sin", "cos", "tan", "asin", "acos", "atan", "atan2",
	"sinh", "cosh", "tanh", "exp", "log", "log10", "sqrt", "cbrt",
	"abs", "ceil", "floor", "round", "pow", "max", "min", "signum",
	"toRadians", "toDegrees", "random", "hypot", "expm1", "log1p",
	"copySign", "nextUp", "nextDown", "ulp", "IEEEremainder", "rint",
	"getExponent", "scalb", "fma",
}

// DefaultNamespaces are qualifiers whose members are provided by the
// integrator, as in Math.PI.
var DefaultNamespaces = []string{"Math"}

// Config configures a Scanner.
type Config struct {
	// ReservedNames are dropped from every result.
	ReservedNames []string `yaml:"reserved_names"`
	// Namespaces are qualifiers that are dropped together with the member
	// that follows the dot.
	Namespaces []string `yaml:"namespaces"`
}

// DefaultConfig returns the editor's reserved names and namespaces.
func DefaultConfig() *Config {
	return &Config{
		ReservedNames: append([]string(nil), DefaultReservedNames...),
		Namespaces:    append([]string(nil), DefaultNamespaces...),
	}
}

// Scanner extracts identifiers from equation text. It is safe for concurrent
// use once built.
type Scanner struct {
	reserved   Set
	namespaces Set
}

// NewScanner builds a scanner. A nil config selects DefaultConfig.
func NewScanner(config *Config) *Scanner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Scanner{
		reserved:   NewSet(config.ReservedNames...),
		namespaces: NewSet(config.Namespaces...),
	}
}

var defaultScanner = NewScanner(nil)

// Identifiers scans text with the default scanner.
func Identifiers(text string) Set {
	return defaultScanner.Identifiers(text)
}

// Reserved reports whether name is dropped by the scanner.
func (s *Scanner) Reserved(name string) bool {
	return s.reserved.Contains(name)
}

// Identifiers returns the set of names text refers to:
//
//   - every quoted "..." or '...' substring, verbatim;
//   - every run of identifier characters (inner spaces allowed, trailing
//     whitespace trimmed) in the text outside quotes.
//
// Reserved names, namespace qualifiers with their members, and runs glued to a
// preceding digit (the exponent of 1e5, the x of 0x1F) are dropped.
func (s *Scanner) Identifiers(text string) Set {
	out := NewSet()

	residual := quotedPattern.ReplaceAllStringFunc(text, func(q string) string {
		if name := q[1 : len(q)-1]; name != "" {
			out.Add(name)
		}
		return quotePlaceholder
	})

	skipMember := false
	for _, loc := range identPattern.FindAllStringIndex(residual, -1) {
		start := loc[0]
		name := strings.TrimRight(residual[loc[0]:loc[1]], " \t")
		end := start + len(name)

		if skipMember && prevNonBlank(residual, start) == '.' {
			skipMember = false
			continue
		}
		skipMember = false

		if start > 0 && isDigit(residual[start-1]) {
			continue
		}
		if s.namespaces.Contains(name) && nextNonBlank(residual, end) == '.' {
			skipMember = true
			continue
		}
		out.Add(name)
	}

	for name := range out {
		if s.reserved.Contains(name) {
			out.Remove(name)
		}
	}
	return out
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func prevNonBlank(s string, i int) byte {
	for i--; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func nextNonBlank(s string, i int) byte {
	for ; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}
