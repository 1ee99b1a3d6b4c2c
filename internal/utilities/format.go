package utilities

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var fileSizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatFileSize render size in 1024 based unit with at most two decimals, e.g. 1536 -> "1.5 KB"
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(fileSizeUnits)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + fileSizeUnits[i]
}

// TimeAgo render how long ago t happened relative to now
func TimeAgo(t time.Time, now time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}

	steps := []struct {
		unit string
		size time.Duration
	}{
		{"year", 365 * 24 * time.Hour},
		{"month", 30 * 24 * time.Hour},
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
	}

	for _, s := range steps {
		if n := int64(d / s.size); n >= 1 {
			if n == 1 {
				return fmt.Sprintf("1 %s ago", s.unit)
			}
			return fmt.Sprintf("%d %ss ago", n, s.unit)
		}
	}
	return "just now"
}

// Slugify turn text into lowercase url friendly slug
func Slugify(s string) string {
	var b strings.Builder
	dash := false

	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			// drop combining accent left by NFKD
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// UniqueSlug append short random suffix to slug of given text
func UniqueSlug(s string) string {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		suffix = []byte(strconv.FormatInt(time.Now().UnixNano()%0xffffff, 16))
	}

	base := Slugify(s)
	if base == "" {
		return hex.EncodeToString(suffix)
	}
	return base + "-" + hex.EncodeToString(suffix)
}
