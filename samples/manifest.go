// Package samples reads the sample manifest and gathers every sample's depth,
// variant, coverage and amplicon data for the report.
package samples

import (
	"os"
	"strings"

	"github.com/brentp/wgscovplot/input"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Entry is one row of the manifest. Only the paths needed by the selected mode
// must be set.
type Entry struct {
	Name            string `yaml:"sample"`
	DepthPath       string `yaml:"depth_file"`
	AmpliconPerbase string `yaml:"amplicon_perbase_file"`
	AmpliconRegions string `yaml:"amplicon_region_file"`
	VCF             string `yaml:"vcf_file"`
}

// Paths returns every declared path of the entry.
func (e Entry) Paths() []string {
	return []string{e.DepthPath, e.AmpliconPerbase, e.AmpliconRegions, e.VCF}
}

// Manifest lists samples in report order.
type Manifest []Entry

// Names returns the sample names in order.
func (m Manifest) Names() []string {
	names := make([]string, len(m))
	for i, e := range m {
		names[i] = e.Name
	}
	return names
}

// column aliases accepted in a tab-delimited manifest header.
var columns = map[string]string{
	"sample":                "sample",
	"sample_name":           "sample",
	"depth_file":            "depth",
	"coverage_depth_file":   "depth",
	"amplicon_perbase_file": "perbase",
	"amplicon_region_file":  "regions",
	"vcf_file":              "vcf",
	"vcf":                   "vcf",
}

// ReadManifest reads a tab-delimited manifest with a header row, or a YAML list of
// entries when the path ends in .yml or .yaml.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	var err error
	if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") {
		m, err = readYAML(path)
	} else {
		m, err = readTSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, input.Parsef(path, 0, "no samples in manifest")
	}
	seen := make(map[string]bool, len(m))
	for i, e := range m {
		if e.Name == "" {
			return nil, input.Parsef(path, i+1, "sample without a name")
		}
		if seen[e.Name] {
			return nil, input.Parsef(path, i+1, "duplicate sample %q", e.Name)
		}
		seen[e.Name] = true
	}
	return m, nil
}

func readYAML(path string) (Manifest, error) {
	if err := input.Check(path); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var m Manifest
	if err := yaml.UnmarshalStrict(b, &m); err != nil {
		return nil, errors.Wrapf(input.ErrParse, "%s: %v", path, err)
	}
	return m, nil
}

func readTSV(path string) (Manifest, error) {
	rdr, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	var m Manifest
	var header []string
	err = input.EachLine(rdr.Reader, func(lineNo int, line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		toks := strings.Split(line, "\t")
		if header == nil {
			header = make([]string, len(toks))
			for i, t := range toks {
				t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(t, "#")))
				if _, ok := columns[t]; !ok {
					return input.Parsef(path, lineNo, "unknown manifest column %q", t)
				}
				header[i] = columns[t]
			}
			if header[0] != "sample" {
				return input.Parsef(path, lineNo, "first manifest column must be the sample name")
			}
			return nil
		}
		if len(toks) > len(header) {
			return input.Parsef(path, lineNo, "expected at most %d columns, got %d", len(header), len(toks))
		}
		var e Entry
		for i, t := range toks {
			t = strings.TrimSpace(t)
			switch header[i] {
			case "sample":
				e.Name = t
			case "depth":
				e.DepthPath = t
			case "perbase":
				e.AmpliconPerbase = t
			case "regions":
				e.AmpliconRegions = t
			case "vcf":
				e.VCF = t
			}
		}
		m = append(m, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
