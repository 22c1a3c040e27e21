package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"상담기록.txt", "상담기록.txt"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\chat log.md`, "chat log.md"},
		{"a<b>c|d.csv", "abcd.csv"},
		{"  .hidden.txt ", "hidden.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilenameLength(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("가", 200) + ".txt")
	assert.LessOrEqual(t, len(got), 255)
	assert.True(t, strings.HasPrefix(got, "가"))
}
