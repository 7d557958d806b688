package calendar

import (
	"fmt"
	"strings"
)

// Convention is a business day roll convention.
type Convention string

const (
	None              Convention = "NONE"
	Following         Convention = "FOLLOWING"
	Preceding         Convention = "PRECEDING"
	ModifiedFollowing Convention = "MODIFIED_FOLLOWING"
	ModifiedPreceding Convention = "MODIFIED_PRECEDING"
	Nearest           Convention = "NEAREST"
)

// Conventions lists every supported convention.
var Conventions = []Convention{None, Following, Preceding, ModifiedFollowing, ModifiedPreceding, Nearest}

var conventionAliases = map[string]Convention{
	"F":  Following,
	"P":  Preceding,
	"MF": ModifiedFollowing,
	"MP": ModifiedPreceding,
}

// ParseConvention is case-insensitive and accepts '-' or ' ' in place of
// '_', plus the market abbreviations F, P, MF and MP.
func ParseConvention(s string) (Convention, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	t = strings.NewReplacer("-", "_", " ", "_").Replace(t)
	if c, ok := conventionAliases[t]; ok {
		return c, nil
	}
	for _, c := range Conventions {
		if string(c) == t {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown business day convention %q", s)
}

func (c Convention) valid() bool {
	for _, k := range Conventions {
		if c == k {
			return true
		}
	}
	return false
}
