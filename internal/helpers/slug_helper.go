package helpers

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const slugMaxLen = 150

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reDashRun  = regexp.MustCompile(`-+`)
)

// Cyrillic transliteration. The venue and event names this site works with
// are Russian, and a dropped-letters slug ("", "-2024-06-15") is useless, so
// non-ASCII letters are transliterated instead of stripped.
var ruTranslit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Slugify normalizes free text into a URL-safe lowercase token sequence:
// transliterate, strip combining marks, collapse punctuation and whitespace
// runs into single dashes, trim the ends. Empty input degrades to "item".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if t, ok := ruTranslit[r]; ok {
			b.WriteString(t)
			continue
		}
		b.WriteRune(r)
	}

	out := reNonAlnum.ReplaceAllString(b.String(), "-")
	out = reDashRun.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")

	if out == "" {
		return "item"
	}
	if rs := []rune(out); len(rs) > slugMaxLen {
		out = strings.Trim(string(rs[:slugMaxLen]), "-")
	}
	return out
}

// UniqueSlug resolves base against the slugs already persisted in
// table.column. On collision it appends -1, -2, ... with a strictly
// increasing counter until a free slug is found. Generation and insert are
// not atomic; the unique index on the column backstops the remaining race.
func UniqueSlug(db *gorm.DB, table, column, base string) (string, error) {
	slug := base
	for i := 1; ; i++ {
		var count int64
		if err := db.Table(table).
			Where(fmt.Sprintf("%s = ?", column), slug).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
