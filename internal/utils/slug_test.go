package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Deep House Cleaning", "deep-house-cleaning"},
		{"  Deep   House  Cleaning  ", "deep-house-cleaning"},
		{"Math Tutoring (Grade 10)!", "math-tutoring-grade-10"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
		{"Ünïcode Dropped", "ncode-dropped"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in, 0), tc.in)
	}
}

func TestSlugifyTruncation(t *testing.T) {
	long := strings.Repeat("word ", 50)
	slug := Slugify(long, 20)
	assert.LessOrEqual(t, len(slug), 20)
	assert.False(t, strings.HasSuffix(slug, "-"), "truncation never leaves a trailing hyphen")
}
