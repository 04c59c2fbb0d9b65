package util

import (
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

var nonIdentifierRe = regexp.MustCompile(`[^a-z0-9._-]`)

// VideoStem derives the identity used to name every artifact of a video:
// the file stem, lowercased, spaces collapsed to underscores, non-ascii and
// punctuation stripped. Identical video path always yields the same stem,
// which is what makes resume/caching by path possible.
func VideoStem(videoPath string) string {
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	stem = strings.ToLower(strings.ReplaceAll(stem, " ", "_"))
	stem = stripNonASCII(stem)
	stem = nonIdentifierRe.ReplaceAllString(stem, "")
	stem = strings.Trim(stem, "._-")
	if stem == "" {
		return "video"
	}
	return stem
}

func stripNonASCII(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r <= unicode.MaxASCII {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

const randCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandStringWithUpperLowerNum returns a random alphanumeric string of length n.
func GenerateRandStringWithUpperLowerNum(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = randCharset[rand.Intn(len(randCharset))]
	}
	return string(b)
}

// NormalizeLabel snaps a model-produced enum value onto the closest allowed
// label. Models occasionally return near-misses ("goood", "Neutral."), and a
// distance of up to 2 edits is close enough to trust. Returns fallback when
// nothing is close.
func NormalizeLabel(got string, allowed []string, fallback string) string {
	cleaned := strings.ToLower(strings.Trim(strings.TrimSpace(got), ".\"'"))
	if cleaned == "" {
		return fallback
	}

	best := fallback
	bestDist := 3
	for _, label := range allowed {
		if cleaned == label {
			return label
		}
		dist := levenshtein.DistanceForStrings([]rune(cleaned), []rune(label), levenshtein.DefaultOptions)
		if dist < bestDist {
			bestDist = dist
			best = label
		}
	}
	return best
}
