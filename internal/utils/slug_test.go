package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Machine Learning", "machine-learning"},
		{"  Machine   Learning  ", "machine-learning"},
		{"Go", "go"},
		{"already-a-slug", "already-a-slug"},
		{"Tabs\tand\nnewlines", "tabs-and-newlines"},
		{"   ", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Slugify(c.in), "input %q", c.in)
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"Machine Learning", "  A   Few   Words  ", "one", "Mixed-Case Hyphens"}
	for _, in := range inputs {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "input %q", in)
	}
}
