// Package theme maps a resolved color scheme to the concrete palette and the
// semantic token table consumed by presentational code.
//
// Everything here is pure: For, BuildTokens and Resolve perform no I/O, have
// no error conditions and return values (not pointers), so callers can treat
// the results as immutable. Resolve is memoised per scheme, which means two
// calls with the same scheme always return field-for-field identical tables.
//
// Data flow:
//
//	Scheme -> For -> Theme -> BuildTokens -> Tokens
//	                    \-> MaterialColors / NavigationColors (framework bridges)
package theme
