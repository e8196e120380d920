package input

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.tsv")
	require.NoError(t, os.WriteFile(p, []byte("x\n"), 0644))

	assert.NoError(t, Check(p, ""))
	err := Check(p, filepath.Join(dir, "missing.tsv"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "missing.tsv")
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.vcf.gz"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEachLineNoTrailingNewline(t *testing.T) {
	var got []string
	var nums []int
	err := EachLine(bufio.NewReader(strings.NewReader("a\r\nb\n\nc")), func(i int, l string) error {
		got = append(got, l)
		nums = append(nums, i)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "", "c"}, got)
	assert.Equal(t, []int{1, 2, 3, 4}, nums)
}

func TestParsef(t *testing.T) {
	err := Parsef("x.bed", 3, "expected %d columns, got %d", 4, 2)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Equal(t, "x.bed:3: expected 4 columns, got 2: parse error", err.Error())
}
