package samples

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/brentp/wgscovplot/annotation"
	"github.com/brentp/wgscovplot/depth"
	"github.com/brentp/wgscovplot/input"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func depthFile(t *testing.T, dir, sample string, depths ...float64) string {
	t.Helper()
	body := ""
	for i, d := range depths {
		body += fmt.Sprintf("%s\tref\t%d\t%g\n", sample, i+1, d)
	}
	return write(t, dir, sample+".depth", body)
}

const vcfText = `##fileformat=VCFv4.2
##source=iVar
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
ref	2	.	C	T	60	PASS	DP=100
ref	2	.	C	G	60	PASS	DP=100
ref	6	.	A	G	60	PASS	DP=100
`

func TestReadManifestTSV(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "samples.tsv", "sample\tcoverage_depth_file\tvcf_file\nb\tb.depth\tb.vcf\na\ta.depth\t\n")
	m, err := ReadManifest(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, m.Names())
	assert.Equal(t, "b.vcf", m[0].VCF)
	assert.Equal(t, "", m[1].VCF)
	assert.Equal(t, "a.depth", m[1].DepthPath)

	_, err = ReadManifest(write(t, dir, "dup.tsv", "sample\tdepth_file\na\tx\na\ty\n"))
	assert.True(t, errors.Is(err, input.ErrParse))
	_, err = ReadManifest(write(t, dir, "col.tsv", "sample\tbam\na\tx\n"))
	assert.True(t, errors.Is(err, input.ErrParse))
	_, err = ReadManifest(write(t, dir, "empty.tsv", "sample\tdepth_file\n"))
	assert.True(t, errors.Is(err, input.ErrParse))
}

func TestReadManifestYAML(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "samples.yaml", `
- sample: s2
  amplicon_perbase_file: s2.perbase.bed
  amplicon_region_file: s2.amplicon.bed
- sample: s1
  depth_file: s1.depth
`)
	m, err := ReadManifest(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, m.Names())
	assert.Equal(t, "s2.amplicon.bed", m[0].AmpliconRegions)

	_, err = ReadManifest(write(t, dir, "bad.yml", "- sample: a\n  bam: x\n"))
	assert.True(t, errors.Is(err, input.ErrParse))
}

func TestAggregate(t *testing.T) {
	dir := t.TempDir()
	m := Manifest{
		{Name: "s1", DepthPath: depthFile(t, dir, "s1", 5, 0, 0, 12, 12, 8, 8, 8), VCF: write(t, dir, "s1.vcf", vcfText)},
		{Name: "s2", DepthPath: depthFile(t, dir, "s2", 20, 20, 20, 20, 20, 20, 20, 20)},
		{Name: "s3", DepthPath: depthFile(t, dir, "s3", 1, 2, 3)},
	}
	feats := []annotation.Feature{{Index: 0, Name: "S", Start: 1, End: 4, Strand: 1}}
	b, err := Aggregate(context.Background(), m, feats, Options{RefLength: 8, Threads: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2", "s3"}, b.Samples)
	assert.Equal(t, []string{"ref", "ref", "ref"}, b.References)
	assert.Equal(t, map[int]string{0: "s1", 1: "s2", 2: "s3"}, b.SampleIndex())
	assert.Equal(t, 10, b.LowThreshold)
	assert.False(t, b.Amplicon)
	assert.Nil(t, b.Amplicons)
	assert.Equal(t, feats, b.Features)

	assert.Equal(t, depth.Epsilon, b.Depths[0][1])
	assert.Equal(t, "1-3; 6-8", b.Stats[0].LowRegions.String())
	assert.Equal(t, "2-3", b.Stats[0].ZeroRegions.String())
	assert.Equal(t, "100.00%", b.Stats[1].Percent())
	// s3 is shorter than the reference; this is logged, not fatal.
	assert.Len(t, b.Depths[2], 3)

	assert.Equal(t, "iVar", b.Callers[0])
	require.Len(t, b.Variants[0], 2)
	assert.Equal(t, "T", b.Variants[0][2].Alt)
	assert.Empty(t, b.Variants[1])
}

func TestAggregateAmplicon(t *testing.T) {
	dir := t.TempDir()
	m := Manifest{{
		Name:            "s1",
		AmpliconPerbase: write(t, dir, "s1.perbase.bed", "ref\t0\t4\t30\nref\t4\t6\t0\n"),
		AmpliconRegions: write(t, dir, "s1.amplicon.bed", "ref\t0\t4\tnCoV_1_pool_1\t30\nref\t3\t6\tnCoV_2_pool_2\t5\n"),
	}}
	b, err := Aggregate(context.Background(), m, nil, Options{Amplicon: true, RefLength: 8, Low: 20})
	require.NoError(t, err)
	assert.True(t, b.Amplicon)
	assert.Equal(t, []float64{30, 30, 30, 30, depth.Epsilon, depth.Epsilon, depth.Epsilon, depth.Epsilon}, b.Depths[0])
	assert.Equal(t, "5-8", b.Stats[0].ZeroRegions.String())
	require.Len(t, b.Amplicons[0], 2)
	assert.Equal(t, "violet", b.Amplicons[0][0].Color())
	assert.Equal(t, "skyblue", b.Amplicons[0][1].Color())

	_, err = Aggregate(context.Background(), m, nil, Options{Amplicon: true})
	assert.True(t, errors.Is(err, input.ErrInvariant))
}

func TestAggregateMissingInput(t *testing.T) {
	dir := t.TempDir()
	m := Manifest{
		{Name: "s1", DepthPath: depthFile(t, dir, "s1", 5, 6)},
		{Name: "s2", DepthPath: depthFile(t, dir, "s2", 5, 6), VCF: filepath.Join(dir, "missing.vcf")},
	}
	b, err := Aggregate(context.Background(), m, nil, Options{})
	assert.Nil(t, b)
	assert.True(t, errors.Is(err, input.ErrNotFound))

	m = Manifest{{Name: "s1"}}
	_, err = Aggregate(context.Background(), m, nil, Options{})
	assert.True(t, errors.Is(err, input.ErrParse))
}

func TestAggregateParseError(t *testing.T) {
	dir := t.TempDir()
	m := Manifest{{Name: "s1", DepthPath: depthFile(t, dir, "s1", 5, 6), VCF: write(t, dir, "s1.vcf", "##source=x\nref\t1\n")}}
	_, err := Aggregate(context.Background(), m, nil, Options{})
	assert.True(t, errors.Is(err, input.ErrParse))
}

func TestAggregateRepeatedPosition(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "s.depth", "s\tref\t1\t5\ns\tref\t2\t5\ns\tref\t2\t5\ns\tref\t3\t20\n")
	b, err := Aggregate(context.Background(), Manifest{{Name: "s", DepthPath: p}}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "s", b.Stats[0].Sample)
	assert.Equal(t, 3, b.Stats[0].LowPositions)
	assert.Equal(t, "25.00%", b.Stats[0].Percent())
}

func TestAggregateNonFiniteDepth(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "s.depth", "s\tref\t1\tnan\ns\tref\t2\tInf\n")
	_, err := Aggregate(context.Background(), Manifest{{Name: "s", DepthPath: p}}, nil, Options{})
	assert.True(t, errors.Is(err, input.ErrParse))
}
