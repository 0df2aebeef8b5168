package compiler

import "strings"

// SplitAddress is the best-effort decomposition of free-text address lines.
type SplitAddress struct {
	LineOne  string
	Postcode string
	City     string
}

// SplitAddressLines decomposes ordered address lines into line-one plus a
// postcode/city pair taken from the last line. This is a documented heuristic
// for the common "street / postcode city" layout, not a postal parser; it
// always returns a triple and never errors.
//
// The last line is split on its first space. If exactly one part is fully
// numeric that part is the postcode; if neither or both are numeric, the
// first part is treated as the city and the second as the postcode. A last
// line without a space counts wholly as the city.
func SplitAddressLines(lines []string) SplitAddress {
	var addr SplitAddress
	if len(lines) == 0 {
		return addr
	}
	addr.LineOne = lines[0]
	if len(lines) < 2 {
		return addr
	}

	last := lines[len(lines)-1]
	idx := strings.Index(last, " ")
	if idx < 0 {
		addr.City = last
		return addr
	}

	first, second := last[:idx], last[idx+1:]
	switch {
	case isNumeric(first) && !isNumeric(second):
		addr.Postcode, addr.City = first, second
	case !isNumeric(first) && isNumeric(second):
		addr.Postcode, addr.City = second, first
	default:
		addr.City, addr.Postcode = first, second
	}
	return addr
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
