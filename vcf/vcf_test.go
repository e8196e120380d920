package vcf

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brentp/wgscovplot/input"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = `##fileformat=VCFv4.2
##source=iVar
##contig=<ID=MN908947.3,length=29903>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
`

const body = `MN908947.3	241	.	C	T	60	PASS	DP=100
MN908947.3	241	.	C	T	55	PASS	DP=90
MN908947.3	241	.	C	G	50	PASS	DP=90
MN908947.3	3037	.	C	T	60	PASS	DP=200
#a stray comment
MN908947.3	3037	.	C	T	60	ambiguous	DP=200
`

func writeFile(t *testing.T, name, content string, gz bool) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	fh, err := os.Create(p)
	require.NoError(t, err)
	if gz {
		w := gzip.NewWriter(fh)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	} else {
		_, err = fh.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, fh.Close())
	return p
}

func TestRead(t *testing.T) {
	for _, gz := range []bool{false, true} {
		name := "s1.vcf"
		if gz {
			name += ".gz"
		}
		caller, vs, err := Read(writeFile(t, name, header+body, gz))
		require.NoError(t, err)
		assert.Equal(t, "iVar", caller)
		// the second 241 C>T row only differs in QUAL and INFO.
		require.Len(t, vs, 4)
		assert.Equal(t, "60", vs[0].Qual)
		assert.Equal(t, "DP=100", vs[0].Fields["INFO"])
		assert.Equal(t, "ambiguous", vs[3].Filter)

		m := ByPosition(vs)
		assert.Len(t, m, 2)
		assert.Equal(t, Allele{"C", "T"}, m[241])
		assert.Equal(t, Allele{"C", "T"}, m[3037])
	}
}

func TestReadNoHeader(t *testing.T) {
	_, _, err := Read(writeFile(t, "bad.vcf", "##fileformat=VCFv4.2\n"+body, false))
	assert.True(t, errors.Is(err, input.ErrParse))
}

func TestReadBadRows(t *testing.T) {
	_, _, err := Read(writeFile(t, "short.vcf", header+"MN908947.3\t241\t.\tC\n", false))
	assert.True(t, errors.Is(err, input.ErrParse))
	_, _, err = Read(writeFile(t, "pos.vcf", header+"MN908947.3\tx\t.\tC\tT\t1\tPASS\t.\n", false))
	assert.True(t, errors.Is(err, input.ErrParse))
	_, _, err = Read(writeFile(t, "cols.vcf", "#CHROM\tPOS\tREF\tALT\n", false))
	assert.True(t, errors.Is(err, input.ErrParse))
}

func TestReadHeaderOnly(t *testing.T) {
	caller, vs, err := Read(writeFile(t, "empty.vcf", header, false))
	require.NoError(t, err)
	assert.Equal(t, "iVar", caller)
	assert.Empty(t, vs)
}

func TestDetectCaller(t *testing.T) {
	k, name := DetectCaller([]string{"##source=medaka", "##nanopolish_window=MN908947.3:1-29903"})
	assert.Equal(t, Nanopolish, k)
	assert.Equal(t, "nanopolish", name)

	k, name = DetectCaller([]string{"##bcftools_callVersion=1.10", "##source=freeBayes v1.3"})
	assert.Equal(t, Source, k)
	assert.Equal(t, "freeBayes v1.3", name)

	k, name = DetectCaller([]string{"##bcftools_callVersion=1.10"})
	assert.Equal(t, Bcftools, k)
	assert.Equal(t, "bcftools", name)

	k, name = DetectCaller(nil)
	assert.Equal(t, Unknown, k)
	assert.Equal(t, "", name)
}

func TestAlleleJSON(t *testing.T) {
	b, err := json.Marshal(map[int]Allele{241: {"C", "T"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"241": ["C", "T"]}`, string(b))
}
