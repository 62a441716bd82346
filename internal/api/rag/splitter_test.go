package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextSingleSegment(t *testing.T) {
	s := NewSplitter(500, 50)
	segments := s.Split("짧은 문서")
	require.Len(t, segments, 1)
	assert.Equal(t, "짧은 문서", segments[0])
}

func TestSplitWindowsAndCoverage(t *testing.T) {
	s := NewSplitter(10, 3)
	text := strings.Repeat("가나다라마바사아자차", 3) // 30 runes

	segments := s.Split(text)
	require.NotEmpty(t, segments)

	runes := []rune(text)
	step := 10 - 3
	for i, seg := range segments {
		start := i * step
		assert.True(t, strings.HasPrefix(string(runes[start:]), seg),
			"segment %d must start at rune %d", i, start)
		assert.LessOrEqual(t, len([]rune(seg)), 10)
	}

	// The final segment must reach the end of the text.
	last := segments[len(segments)-1]
	assert.True(t, strings.HasSuffix(text, last))

	// Concatenating with the overlap removed reconstructs the input.
	var b strings.Builder
	b.WriteString(segments[0])
	for _, seg := range segments[1:] {
		r := []rune(seg)
		if len(r) > 3 {
			b.WriteString(string(r[3:]))
		}
	}
	assert.Equal(t, text, b.String())
}

func TestSplitExactWindowBoundary(t *testing.T) {
	s := NewSplitter(10, 0)
	text := strings.Repeat("가", 20)
	segments := s.Split(text)
	require.Len(t, segments, 2)
	assert.Equal(t, strings.Repeat("가", 10), segments[0])
	assert.Equal(t, strings.Repeat("가", 10), segments[1])
}

func TestNewSplitterSanitizesArguments(t *testing.T) {
	s := NewSplitter(0, -1)
	assert.Equal(t, 500, s.size)
	assert.Equal(t, 0, s.overlap)

	s = NewSplitter(10, 10)
	assert.Equal(t, 0, s.overlap, "overlap >= size would never advance")
}
