package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	apperrors "capychat/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrepareShortTextUnchanged(t *testing.T) {
	ts := NewTranscriptService(zap.NewNop(), 100)
	assert.Equal(t, "고객: 안녕하세요\n상담원: 네", ts.Prepare(context.Background(), "  고객: 안녕하세요\n상담원: 네 \n"))
}

func TestPrepareUnlimited(t *testing.T) {
	ts := NewTranscriptService(zap.NewNop(), 0)
	long := strings.Repeat("가", 5000)
	assert.Equal(t, long, ts.Prepare(context.Background(), long))
}

func TestPrepareCutsAtSentenceBoundary(t *testing.T) {
	ts := NewTranscriptService(zap.NewNop(), 30)
	text := "First sentence here. Second sentence is here. Third one goes on and on."

	got := ts.Prepare(context.Background(), text)
	require.True(t, strings.HasSuffix(got, TruncationMarker))

	kept := strings.TrimSuffix(got, TruncationMarker)
	assert.True(t, strings.HasPrefix(text, kept))
	assert.LessOrEqual(t, utf8.RuneCountInString(kept), 30)
	assert.True(t, strings.HasSuffix(kept, "."), "kept %q", kept)
}

func TestPrepareFallsBackToCharacterLimit(t *testing.T) {
	ts := NewTranscriptService(zap.NewNop(), 10)
	text := strings.Repeat("a", 50)

	assert.Equal(t, strings.Repeat("a", 10)+TruncationMarker, ts.Prepare(context.Background(), text))
}

func TestReadUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     string
		want        string
		wantInvalid bool
	}{
		{name: "text_with_bom", filename: "log.txt", content: "\xef\xbb\xbfQ: 배송?\nA: 2일", want: "Q: 배송?\nA: 2일"},
		{name: "markdown", filename: "LOG.MD", content: "# 상담\n- 환불", want: "# 상담\n- 환불"},
		{name: "invalid_utf8_dropped", filename: "log.csv", content: "a,\xffb", want: "a,b"},
		{name: "unsupported_extension", filename: "log.docx", content: "x", wantInvalid: true},
		{name: "blank_file", filename: "log.txt", content: " \n\t", wantInvalid: true},
		{name: "broken_pdf", filename: "log.pdf", content: "not a pdf", wantInvalid: true},
	}

	ts := NewTranscriptService(zap.NewNop(), 1000)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.content)
			got, err := ts.ReadUpload(context.Background(), tt.filename, r, int64(len(tt.content)))
			if tt.wantInvalid {
				require.Error(t, err)
				assert.True(t, apperrors.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByteOffsetOfRune(t *testing.T) {
	assert.Equal(t, 0, byteOffsetOfRune("가나다", 0))
	assert.Equal(t, 3, byteOffsetOfRune("가나다", 1))
	assert.Equal(t, 9, byteOffsetOfRune("가나다", 5))
}
