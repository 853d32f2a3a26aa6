package buffer

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()

	assert.True(t, b.IsEmpty())
	assert.Equal(t, int64(0), b.Len())
	assert.Equal(t, uint32(1), b.LineCount())
	assert.Equal(t, 4, b.TabWidth())
}

func TestNewBufferFromStringMultiline(t *testing.T) {
	b := NewBufferFromString("line1\nline2\nline3")

	require.Equal(t, uint32(3), b.LineCount())
	assert.Equal(t, "line1", b.LineText(0))
	assert.Equal(t, "line2", b.LineText(1))
	assert.Equal(t, "line3", b.LineText(2))
	assert.Equal(t, "", b.LineText(3))
}

func TestNewBufferFromReader(t *testing.T) {
	b, err := NewBufferFromReader(strings.NewReader("a\r\nb"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb", b.Text())
}

func TestBufferLineEndingNormalization(t *testing.T) {
	tests := []struct {
		name   string
		le     LineEnding
		input  string
		expect string
	}{
		{"lf", LineEndingLF, "a\r\nb\rc", "a\nb\nc"},
		{"crlf", LineEndingCRLF, "a\nb\r\nc", "a\r\nb\r\nc"},
		{"cr", LineEndingCR, "a\nb\r\nc", "a\rb\rc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromString(tt.input, WithLineEnding(tt.le))
			assert.Equal(t, tt.expect, b.Text())
			assert.Equal(t, uint32(3), b.LineCount())
		})
	}
}

func TestBufferCRLFLineText(t *testing.T) {
	b := NewBufferFromString("ab\r\ncd", WithLineEnding(LineEndingCRLF))

	assert.Equal(t, "ab", b.LineText(0))
	assert.Equal(t, "cd", b.LineText(1))
	assert.Equal(t, int64(2), b.LineEndOffset(0))
	assert.Equal(t, int64(4), b.LineStartOffset(1))
}

func TestBufferInsertDeleteReplace(t *testing.T) {
	b := NewBufferFromString("Hello, World!")

	end, err := b.Insert(7, "Beautiful ")
	require.NoError(t, err)
	assert.Equal(t, int64(17), end)
	assert.Equal(t, "Hello, Beautiful World!", b.Text())

	require.NoError(t, b.Delete(0, 7))
	assert.Equal(t, "Beautiful World!", b.Text())

	end, err = b.Replace(0, 9, "Big")
	require.NoError(t, err)
	assert.Equal(t, int64(3), end)
	assert.Equal(t, "Big World!", b.Text())
}

func TestBufferInvalidEdits(t *testing.T) {
	b := NewBufferFromString("abc")

	_, err := b.Insert(10, "x")
	assert.ErrorIs(t, err, ErrRangeInvalid)
	assert.ErrorIs(t, b.Delete(2, 1), ErrRangeInvalid)
	_, err = b.Replace(-1, 1, "x")
	assert.ErrorIs(t, err, ErrRangeInvalid)
	assert.Equal(t, "abc", b.Text())
}

func TestBufferApplyEdit(t *testing.T) {
	b := NewBufferFromString("foo bar")
	rev := b.RevisionID()

	res, err := b.ApplyEdit(Edit{Range: NewRange(4, 7), NewText: "bazzz"})
	require.NoError(t, err)
	assert.Equal(t, "bar", res.OldText)
	assert.Equal(t, NewRange(4, 9), res.NewRange)
	assert.Equal(t, int64(2), res.Delta)
	assert.NotEqual(t, rev, b.RevisionID())
}

func TestBufferApplyEdits(t *testing.T) {
	b := NewBufferFromString("a b c")

	err := b.ApplyEdits([]Edit{
		NewInsert(5, "!"),
		NewDelete(2, 3),
		NewInsert(0, ">"),
	})
	require.NoError(t, err)
	assert.Equal(t, ">a  c!", b.Text())

	err = b.ApplyEdits([]Edit{NewInsert(0, "x"), NewInsert(3, "y")})
	assert.ErrorIs(t, err, ErrEditsOverlap)
}

func TestBufferPointConversion(t *testing.T) {
	b := NewBufferFromString("ab\ncde\n\nf")

	tests := []struct {
		offset int64
		point  Point
	}{
		{0, Point{0, 0}},
		{2, Point{0, 2}},
		{3, Point{1, 0}},
		{6, Point{1, 3}},
		{7, Point{2, 0}},
		{8, Point{3, 0}},
		{9, Point{3, 1}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.point, b.OffsetToPoint(tt.offset), "offset %d", tt.offset)
		assert.Equal(t, tt.offset, b.PointToOffset(tt.point), "point %s", tt.point)
	}

	assert.Equal(t, Point{3, 1}, b.OffsetToPoint(100))
	assert.Equal(t, int64(2), b.PointToOffset(Point{0, 50}))
	assert.Equal(t, int64(9), b.PointToOffset(Point{40, 0}))
}

func TestPointAdd(t *testing.T) {
	base := Point{Line: 2, Column: 4}

	assert.Equal(t, Point{2, 7}, base.Add(Point{0, 3}))
	assert.Equal(t, Point{3, 1}, base.Add(Point{1, 1}))
	assert.True(t, base.Before(Point{2, 5}))
	assert.Equal(t, 0, base.Compare(Point{2, 4}))
}

func TestDetectLineEnding(t *testing.T) {
	assert.Equal(t, LineEndingLF, DetectLineEnding("no newline"))
	assert.Equal(t, LineEndingLF, DetectLineEnding("a\nb\nc\r\n"))
	assert.Equal(t, LineEndingCRLF, DetectLineEnding("a\r\nb\r\n"))
	assert.Equal(t, LineEndingCR, DetectLineEnding("a\rb\r"))
}

func TestBufferConcurrentAccess(t *testing.T) {
	b := NewBufferFromString("")
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = b.Insert(0, "x")
				_ = b.Text()
				_ = b.OffsetToPoint(b.Len())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(400), b.Len())
}
