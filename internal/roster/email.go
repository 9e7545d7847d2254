package roster

import "regexp"

// notSpaceOrAt matches one character that is neither "@" nor whitespace,
// counting vertical tab and Unicode space separators as whitespace.
const notSpaceOrAt = `[^\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}@]`

var emailRegexp = regexp.MustCompile(`^` + notSpaceOrAt + `+@` + notSpaceOrAt + `+\.` + notSpaceOrAt + `+$`)

// ValidateEmail reports whether candidate looks like local@domain.tld:
// exactly one "@", at least one "." after it, and no whitespace.
func ValidateEmail(candidate string) bool {
	return emailRegexp.MatchString(candidate)
}
