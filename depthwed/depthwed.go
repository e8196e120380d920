// Package depthwed combines the depth of every sample in a manifest into a
// matrix of mean depth per window.
package depthwed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	arg "github.com/alexflint/go-arg"
	"github.com/brentp/wgscovplot/depth"
	"github.com/brentp/wgscovplot/samples"
	"github.com/brentp/xopen"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

type cliargs struct {
	Size     int    `arg:"-s" help:"window size in bases"`
	Amplicon bool   `help:"use amplicon perbase depth files from the manifest"`
	Length   int    `help:"reference length. required with --amplicon"`
	Threads  int    `arg:"-t" help:"number of samples to read at once"`
	Output   string `arg:"-o" help:"output path; .gz for gzip"`
	Samples  string `arg:"positional,required" help:"sample manifest"`
}

func pcheck(e error) {
	if e != nil {
		c := color.New(color.BgRed).Add(color.Bold)
		fmt.Fprintf(os.Stderr, "%s\n", c.SprintFunc()(fmt.Sprintf("ERROR: %s", e)))
		os.Exit(1)
	}
}

// Main is run from the dispatcher
func Main() {
	cli := cliargs{Size: 100, Threads: 4, Output: "-"}
	arg.MustParse(&cli)
	pcheck(run(cli))
}

func run(cli cliargs) error {
	m, err := samples.ReadManifest(cli.Samples)
	if err != nil {
		return err
	}
	b, err := samples.Aggregate(context.Background(), m, nil, samples.Options{
		Amplicon: cli.Amplicon, RefLength: cli.Length, Threads: cli.Threads})
	if err != nil {
		return err
	}
	wtr, err := xopen.Wopen(cli.Output)
	if err != nil {
		return errors.Wrapf(err, "creating %s", cli.Output)
	}
	if err := Write(wtr, b, cli.Size); err != nil {
		wtr.Close()
		return err
	}
	return wtr.Close()
}

// windowMean is the mean depth of depths[start:end] with masked zeros counted
// as 0, or -1 when the window is past the end of the series.
func windowMean(depths []float64, start, end int) float64 {
	if start >= len(depths) {
		return -1
	}
	if end > len(depths) {
		end = len(depths)
	}
	w := depths[start:end]
	s := floats.Sum(w)
	for _, d := range w {
		if d == depth.Epsilon {
			s -= d
		}
	}
	return s / float64(len(w))
}

// Write writes a header of #chrom, start, end and the sample names followed by
// one row per window of size bases. Samples with a shorter series than the
// longest get NA past their end.
func Write(w io.Writer, b *samples.Bundle, size int) error {
	if size <= 0 {
		return errors.Errorf("window size must be positive, got %d", size)
	}
	chrom := "."
	n := 0
	for i, d := range b.Depths {
		if len(d) > n {
			n = len(d)
			chrom = b.References[i]
		}
	}
	bw := bufio.NewWriter(w)
	names := append([]string{"#chrom", "start", "end"}, b.Samples...)
	bw.WriteString(strings.Join(names, "\t") + "\n")

	row := make([]string, 3+len(b.Samples))
	row[0] = chrom
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		row[1], row[2] = strconv.Itoa(start), strconv.Itoa(end)
		for i, d := range b.Depths {
			if m := windowMean(d, start, end); m < 0 {
				row[3+i] = "NA"
			} else {
				row[3+i] = strconv.FormatFloat(m, 'f', 2, 64)
			}
		}
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
