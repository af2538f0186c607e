package forecasts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLength int
		want      []string
	}{
		{
			name:      "empty input yields one empty segment",
			text:      "",
			maxLength: 140,
			want:      []string{""},
		},
		{
			name:      "short text fits in one segment",
			text:      "a\nb\nc",
			maxLength: 140,
			want:      []string{"a\nb\nc"},
		},
		{
			name:      "lines packed greedily",
			text:      "aaaa\nbbbb\ncccc",
			maxLength: 9,
			want:      []string{"aaaa\nbbbb", "cccc"},
		},
		{
			name:      "overlong line stands alone without splitting",
			text:      "short\n" + strings.Repeat("x", 20) + "\nend",
			maxLength: 10,
			want:      []string{"short", strings.Repeat("x", 20), "end"},
		},
		{
			name:      "overlong first line does not produce a leading empty segment",
			text:      strings.Repeat("y", 12) + "\nz",
			maxLength: 10,
			want:      []string{strings.Repeat("y", 12), "z"},
		},
		{
			name:      "trailing newline on a full segment adds no empty segment",
			text:      "aaaa\nbbbb\n",
			maxLength: 9,
			want:      []string{"aaaa\nbbbb"},
		},
		{
			name:      "run of blank lines never becomes its own segment",
			text:      "aaaa\n\n\n\nbbbb",
			maxLength: 4,
			want:      []string{"aaaa", "bbbb"},
		},
		{
			name:      "blank-only input yields one empty segment",
			text:      "\n\n",
			maxLength: 140,
			want:      []string{""},
		},
		{
			name:      "trailing whitespace trimmed",
			text:      "one  \ntwo\t\n",
			maxLength: 140,
			want:      []string{"one  \ntwo"},
		},
		{
			name:      "multibyte characters counted once",
			text:      "25°C\n26°C",
			maxLength: 9,
			want:      []string{"25°C\n26°C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.text, tt.maxLength))
		})
	}
}

func TestSegmentPreservesContentAndBounds(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, strings.Repeat(string(rune('a'+i%26)), 1+i%17))
	}
	text := strings.Join(lines, "\n")

	segments := Segment(text, 30)

	assert.Equal(t, text, strings.Join(segments, "\n"))
	for _, s := range segments {
		assert.LessOrEqual(t, utf8.RuneCountInString(s), 30, s)
	}
}
