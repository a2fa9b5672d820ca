// Package lang implements UmbraScript, a small template language for
// rendering short labels from named values.
//
// A template is plain text with embedded bracketed expressions. Text outside
// brackets is copied verbatim; each bracketed expression is evaluated and its
// result spliced in its place.
//
//	Hello [Name]!
//	[Name | upper]
//	[Health < 30 ? "LOW " + Health : Health]
//
// # Grammar
//
// Informal EBNF, loosest to tightest binding:
//
//	template    → (TEXT | NUMBER | bracketed)*
//	bracketed   → '[' concat ']'
//	concat      → ternary ('+' ternary)*
//	ternary     → comparison ('?' concat (':' ternary)?)?
//	comparison  → pipe (('==' | '<' | '>') pipe)*
//	pipe        → primary ('|' IDENTIFIER)*
//	primary     → IDENTIFIER | NUMBER | STRING | '[' concat ']'
//
// Brackets double as grouping inside an expression. Identifiers and filter
// names are case-insensitive.
//
// # Evaluation
//
// Evaluation is total. A missing placeholder renders as the empty string, an
// unknown filter leaves its input unchanged, and a comparison whose operands
// are not both numbers compares them as strings. Only [Parse] reports errors,
// as a *[ParseError] carrying the column of the offending token.
//
// # Caching
//
// [Cache] memoizes parsed templates by source text, and [Template] holds the
// parse result for one configuration-owned template string.
package lang
