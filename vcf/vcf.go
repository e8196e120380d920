// Package vcf reads variant calls, removes duplicate records and indexes them by position.
package vcf

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/brentp/wgscovplot/input"
)

// Variant is a single record from the body of a VCF.
type Variant struct {
	Chrom  string
	Pos    int
	ID     string
	Ref    string
	Alt    string
	Qual   string
	Filter string
	// Fields holds every column of the record keyed by header name.
	Fields map[string]string
}

type key struct {
	chrom, id, ref, alt, filter string
	pos                         int
}

func (v Variant) key() key {
	return key{chrom: v.Chrom, pos: v.Pos, id: v.ID, ref: v.Ref, alt: v.Alt, filter: v.Filter}
}

// Allele is the reference and alternate allele at a position.
type Allele struct {
	Ref string
	Alt string
}

// MarshalJSON encodes the allele as [ref, alt].
func (a Allele) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{a.Ref, a.Alt})
}

// CallerKind identifies the tool that wrote a VCF.
type CallerKind int

const (
	Unknown CallerKind = iota
	// Source is any caller declared with ##source=.
	Source
	Nanopolish
	Bcftools
)

// DetectCaller inspects the ## metadata lines and returns the kind of caller and its name.
// A nanopolish signature wins over any ##source line.
func DetectCaller(lines []string) (CallerKind, string) {
	kind, name := Unknown, ""
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "##nanopolish"):
			return Nanopolish, "nanopolish"
		case strings.HasPrefix(line, "##source="):
			kind, name = Source, strings.TrimSpace(strings.TrimPrefix(line, "##source="))
		case strings.HasPrefix(line, "##bcftools_callVersion") && kind == Unknown:
			kind, name = Bcftools, "bcftools"
		}
	}
	return kind, name
}

var required = []string{"CHROM", "POS", "ID", "REF", "ALT", "FILTER"}

// Read parses the VCF at path (optionally gzipped) and returns the caller name and the
// records in file order with duplicates removed. A file without a #CHROM header is an error.
func Read(path string) (string, []Variant, error) {
	rdr, err := input.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer rdr.Close()

	var meta []string
	var cols []string
	colIdx := make(map[string]int)
	// rows must reach at least the last required column.
	minCols := 0
	seen := make(map[key]bool)
	var variants []Variant

	err = input.EachLine(rdr.Reader, func(lineNo int, line string) error {
		if cols == nil {
			if strings.HasPrefix(line, "#CHROM") {
				cols = strings.Split(strings.TrimSpace(line[1:]), "\t")
				for i, c := range cols {
					colIdx[c] = i
				}
				for _, c := range required {
					i, ok := colIdx[c]
					if !ok {
						return input.Parsef(path, lineNo, "missing %s column in header", c)
					}
					if i+1 > minCols {
						minCols = i + 1
					}
				}
			} else if strings.HasPrefix(line, "##") {
				meta = append(meta, line)
			}
			return nil
		}
		if len(line) == 0 || line[0] == '#' {
			return nil
		}
		toks := strings.Split(line, "\t")
		if len(toks) < minCols || len(toks) > len(cols) {
			return input.Parsef(path, lineNo, "expected %d columns, got %d", len(cols), len(toks))
		}
		v := Variant{Fields: make(map[string]string, len(toks))}
		for i, t := range toks {
			v.Fields[cols[i]] = t
		}
		pos, err := strconv.Atoi(v.Fields["POS"])
		if err != nil {
			return input.Parsef(path, lineNo, "bad POS: %q", v.Fields["POS"])
		}
		v.Chrom, v.Pos, v.ID = v.Fields["CHROM"], pos, v.Fields["ID"]
		v.Ref, v.Alt, v.Filter = v.Fields["REF"], v.Fields["ALT"], v.Fields["FILTER"]
		v.Qual = v.Fields["QUAL"]
		k := v.key()
		if seen[k] {
			return nil
		}
		seen[k] = true
		variants = append(variants, v)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	if cols == nil {
		return "", nil, input.Parsef(path, 0, "no #CHROM header line found")
	}
	_, caller := DetectCaller(meta)
	return caller, variants, nil
}

// ByPosition maps each position to its alleles. The first record at a position wins.
func ByPosition(variants []Variant) map[int]Allele {
	m := make(map[int]Allele, len(variants))
	for _, v := range variants {
		if _, ok := m[v.Pos]; ok {
			continue
		}
		m[v.Pos] = Allele{Ref: v.Ref, Alt: v.Alt}
	}
	return m
}
