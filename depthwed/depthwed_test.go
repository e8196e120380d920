package depthwed

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/brentp/wgscovplot/depth"
	"github.com/brentp/wgscovplot/samples"
	"github.com/brentp/xopen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	b := &samples.Bundle{
		Samples:    []string{"s1", "s2"},
		References: []string{"MN908947.3", "MN908947.3"},
		Depths: [][]float64{
			{depth.Epsilon, 4, 6, 10, 1},
			{2, 2, 2},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, b, 2))
	assert.Equal(t, "#chrom\tstart\tend\ts1\ts2\n"+
		"MN908947.3\t0\t2\t2.00\t2.00\n"+
		"MN908947.3\t2\t4\t8.00\t2.00\n"+
		"MN908947.3\t4\t5\t1.00\tNA\n", buf.String())

	assert.Error(t, Write(&buf, b, 0))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	d := filepath.Join(dir, "s1.depth")
	require.NoError(t, os.WriteFile(d, []byte("s1\tref\t1\t0\ns1\tref\t2\t3\ns1\tref\t3\t9\n"), 0644))
	man := filepath.Join(dir, "samples.tsv")
	require.NoError(t, os.WriteFile(man, []byte("sample\tdepth_file\ns1\t"+d+"\n"), 0644))

	out := filepath.Join(dir, "matrix.tsv.gz")
	require.NoError(t, run(cliargs{Size: 10, Threads: 1, Output: out, Samples: man}))

	rdr, err := xopen.Ropen(out)
	require.NoError(t, err)
	defer rdr.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(rdr)
	require.NoError(t, err)
	assert.Equal(t, "#chrom\tstart\tend\ts1\nref\t0\t3\t4.00\n", buf.String())
}
