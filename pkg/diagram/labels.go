package diagram

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ValidateLabel decides whether node selfKey of the given category may be
// labelled newLabel. It is the boolean form of CheckLabel.
func ValidateLabel(r Reader, selfKey string, category Category, oldLabel, newLabel string) bool {
	return CheckLabel(r, selfKey, category, oldLabel, newLabel) == nil
}

// CheckLabel explains why a label is rejected. Rules, in order:
//
//   - an unchanged label is always accepted;
//   - the empty label is rejected;
//   - a ghost label is accepted only if a real node with the same canonical
//     name and category exists other than selfKey; an empty category matches
//     any category;
//   - a label that parses as a number is rejected;
//   - otherwise the label must not be used by any other real node, whatever
//     its category.
//
// CheckLabel never mutates the graph.
func CheckLabel(r Reader, selfKey string, category Category, oldLabel, newLabel string) error {
	if newLabel == oldLabel {
		return nil
	}
	if strings.TrimSpace(newLabel) == "" {
		return ErrEmptyLabel
	}

	id := ParseIdentity(newLabel)
	if id.Kind == Ghost {
		for _, n := range r.Nodes() {
			if n.Key == selfKey || n.IsGhost() || n.Name() != id.Name {
				continue
			}
			if category == "" || n.Category == category {
				return nil
			}
		}
		return ErrGhostTarget
	}

	if IsNumeric(newLabel) {
		return ErrNumericLabel
	}

	for _, n := range r.Nodes() {
		if n.Key == selfKey || n.IsGhost() {
			continue
		}
		if n.Name() == newLabel {
			return ErrDuplicateLabel
		}
	}
	return nil
}

// IsNumeric reports whether s reads entirely as a number, so that it could be
// mistaken for a literal inside an equation. The accepted forms are those of
// an equation literal: decimal and exponent notation, an unsigned 0x, 0o or
// 0b integer, and Infinity. Go-only spellings such as inf or 1_000 are names.
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "_") {
		return false
	}
	unsigned := strings.TrimPrefix(strings.TrimPrefix(s, "+"), "-")
	if unsigned == "Infinity" {
		return true
	}
	if len(unsigned) > 1 && unsigned[0] == '0' && strings.ContainsRune("xXoObB", rune(unsigned[1])) {
		if unsigned != s {
			return false
		}
		_, err := strconv.ParseUint(s, 0, 64)
		return err == nil || errors.Is(err, strconv.ErrRange)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// 1e999 is still a number, only too large to hold.
		return errors.Is(err, strconv.ErrRange)
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
