// Package kana folds hiragana to katakana so a search term written in either
// script matches text stored in the other.
package kana

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	hiragana = "あいうえおかきくけこさしすせそたちつてとなにぬねのはひふへほまみむめもやゆよらりるれろわをんがぎぐげござじずぜぞだぢづでどばびぶべぼぱぴぷぺぽぁぃぅぇぉゃゅょっゎゐゑ"
	katakana = "アイウエオカキクケコサシスセソタチツテトナニヌネノハヒフヘホマミムメモヤユヨラリルレロワヲンガギグゲゴザジズゼゾダヂヅデドバビブベボパピプペポァィゥェォャュョッヮヰヱ"
)

var toKatakana = buildTable()

func buildTable() map[rune]rune {
	h, k := []rune(hiragana), []rune(katakana)
	if len(h) != len(k) {
		panic("kana: table length mismatch")
	}
	m := make(map[rune]rune, len(h))
	for i := range h {
		m[h[i]] = k[i]
	}
	return m
}

// Fold maps every hiragana in the table to its katakana counterpart.
// Other runes pass through unchanged.
func Fold(s string) string {
	return strings.Map(func(r rune) rune {
		if k, ok := toKatakana[r]; ok {
			return k
		}
		return r
	}, s)
}

// Normalize brings half-width katakana and full-width ASCII to their
// canonical widths, then folds hiragana. Half-width voiced marks widen to
// combining marks, so the result is recomposed (ｶﾞ -> ガ, not カ+U+3099).
func Normalize(s string) string {
	return Fold(norm.NFC.String(width.Fold.String(s)))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Patterns returns the distinct substring LIKE patterns for term: the raw
// term and its normalized form. An empty term yields no patterns.
func Patterns(term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	raw := "%" + likeEscaper.Replace(term) + "%"
	folded := "%" + likeEscaper.Replace(Normalize(term)) + "%"
	if raw == folded {
		return []string{raw}
	}
	return []string{raw, folded}
}
