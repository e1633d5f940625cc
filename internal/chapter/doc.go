// Package chapter identifies chapter numbers in manga archive file names.
//
// File names across release groups are inconsistent, so extraction runs an
// ordered list of strategies from most to least specific: the last number in
// the name, a number at the end or before a volume marker, a whitespace
// delimited number, and finally the first number anywhere. Fractional numbers
// (12.5) are accepted by default because side stories and extras use them;
// integer-only parsing is available but has to be chosen explicitly.
package chapter
