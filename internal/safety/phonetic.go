package safety

import (
	"strings"

	"github.com/mozillazg/go-pinyin"
)

const (
	ideographMin = '一'
	ideographMax = '龥'
)

var numerals = strings.NewReplacer(
	"0", "零", "1", "一", "2", "二", "3", "三", "4", "四",
	"5", "五", "6", "六", "7", "七", "8", "八", "9", "九",
)

var pinyinArgs = func() pinyin.Args {
	a := pinyin.NewArgs()
	a.Style = pinyin.Normal
	return a
}()

func isIdeograph(r rune) bool {
	return r >= ideographMin && r <= ideographMax
}

func hasIdeograph(s string) bool {
	return strings.IndexFunc(s, isIdeograph) >= 0
}

// replaceDigits maps ASCII digits to Chinese numerals so "123" and "一二三"
// share a phonetic spelling.
func replaceDigits(s string) string {
	return numerals.Replace(s)
}

// phonetic replaces every ideograph by its first toneless lowercase reading,
// "v" standing for ü. Characters without a reading are kept as they are.
func phonetic(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) * 2)
	for _, r := range s {
		if !isIdeograph(r) {
			sb.WriteRune(r)
			continue
		}
		readings := pinyin.SinglePinyin(r, pinyinArgs)
		if len(readings) == 0 || readings[0] == "" {
			sb.WriteRune(r)
			continue
		}
		sb.WriteString(strings.ToLower(strings.ReplaceAll(readings[0], "ü", "v")))
	}
	return sb.String()
}
