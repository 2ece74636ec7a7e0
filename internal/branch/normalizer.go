// Package branch maps free-text academic department names onto the fixed set
// of branches used by job eligibility rules.
package branch

import "strings"

// Canonical branch names, listed in rule order.
const (
	ComputerScience          = "Computer Science Engineering"
	InformationScience       = "Information Science"
	ElectronicsCommunication = "Electronics and Communication"
	AIML                     = "AIML"
	ElectricalElectronics    = "Electrical and Electronics"
	Civil                    = "Civil"
	Mechanical               = "Mechanical"
	Chemical                 = "Chemical"
)

type rule struct {
	name  string
	match func(lower string) bool
}

// rules are evaluated in order; the first match wins. "CSE (AI/ML)" therefore
// resolves to ComputerScience.
var rules = []rule{
	{ComputerScience, func(s string) bool {
		return strings.Contains(s, "computer") || strings.Contains(s, "cse") || s == "cs"
	}},
	{InformationScience, func(s string) bool {
		return strings.Contains(s, "information") || strings.Contains(s, "ise") || s == "is"
	}},
	{ElectronicsCommunication, func(s string) bool {
		return (strings.Contains(s, "electronic") && strings.Contains(s, "communication")) || strings.Contains(s, "ece")
	}},
	{AIML, func(s string) bool {
		return strings.Contains(s, "ai") || strings.Contains(s, "ml") || strings.Contains(s, "artificial")
	}},
	{ElectricalElectronics, func(s string) bool {
		return (strings.Contains(s, "electric") && strings.Contains(s, "electronic")) || strings.Contains(s, "eee")
	}},
	{Civil, func(s string) bool { return strings.Contains(s, "civil") }},
	{Mechanical, func(s string) bool { return strings.Contains(s, "mech") }},
	{Chemical, func(s string) bool { return strings.Contains(s, "chem") }},
}

// Normalize returns the canonical branch for raw. Input that matches no rule
// is returned unchanged.
func Normalize(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return raw
	}
	for _, r := range rules {
		if r.match(lower) {
			return r.name
		}
	}
	return raw
}

// Canonical returns the canonical branch names in rule order.
func Canonical() []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.name
	}
	return out
}

// IsCanonical reports whether name is one of the canonical branch names.
func IsCanonical(name string) bool {
	for _, r := range rules {
		if r.name == name {
			return true
		}
	}
	return false
}
