package annotation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/brentp/wgscovplot/input"
)

// Record is one LOCUS of a GenBank file.
type Record struct {
	Name     string
	Length   int
	Features []GBFeature
	Sequence string
}

// GBFeature is an entry of the FEATURES table.
type GBFeature struct {
	Type     string
	Location string
	// Start is 0-based, End is exclusive, matching the usual half-open convention.
	Start  int
	End    int
	Strand int
	// Qualifiers such as gene or locus_tag; a qualifier may repeat.
	Qualifiers map[string][]string
}

// Qualifier returns the first value of the named qualifier.
func (f GBFeature) Qualifier(name string) (string, bool) {
	v, ok := f.Qualifiers[name]
	if !ok || len(v) == 0 || v[0] == "" {
		return "", false
	}
	return v[0], true
}

const (
	featureIndent   = 5
	qualifierIndent = 21
)

// match a base range (with optional partial markers), a between-bases site (a^b) or a single base.
var rangeRe = regexp.MustCompile(`<?(\d+)(?:(\.\.|\^)>?(\d+))?`)

// ParseLocation returns the 0-based start, exclusive end and strand of a GenBank location
// such as "complement(join(100..200,300..400))". The span covers all parts.
func ParseLocation(loc string) (start, end, strand int, err error) {
	loc = strings.Join(strings.Fields(loc), "")
	matches := rangeRe.FindAllStringSubmatch(loc, -1)
	if len(matches) == 0 {
		return 0, 0, 0, input.Parsef("location", 0, "no positions in %q", loc)
	}
	lo, hi := -1, -1
	for _, m := range matches {
		toks := []string{m[1], m[3]}
		// a site between two bases is drawn on the first of them.
		if m[2] == "^" {
			toks = toks[:1]
		}
		for _, tok := range toks {
			if tok == "" {
				continue
			}
			v, _ := strconv.Atoi(tok)
			if lo == -1 || v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	strand = 1
	if strings.HasPrefix(loc, "complement(") || strings.Count(loc, "complement(") >= len(matches) {
		strand = -1
	}
	return lo - 1, hi, strand, nil
}

type gbParser struct {
	path    string
	records []Record
	rec     *Record
	feat    *GBFeature
	qual    string
	// open quote on the current qualifier value.
	inQuote bool
	section string
	seq     strings.Builder
}

func (p *gbParser) finishFeature(lineNo int) error {
	if p.feat == nil {
		return nil
	}
	var err error
	p.feat.Start, p.feat.End, p.feat.Strand, err = ParseLocation(p.feat.Location)
	if err != nil {
		return input.Parsef(p.path, lineNo, "bad location for %s: %q", p.feat.Type, p.feat.Location)
	}
	p.rec.Features = append(p.rec.Features, *p.feat)
	p.feat, p.qual, p.inQuote = nil, "", false
	return nil
}

func (p *gbParser) finishRecord(lineNo int) error {
	if p.rec == nil {
		return nil
	}
	if err := p.finishFeature(lineNo); err != nil {
		return err
	}
	p.rec.Sequence = p.seq.String()
	if p.rec.Length == 0 {
		p.rec.Length = len(p.rec.Sequence)
	}
	p.records = append(p.records, *p.rec)
	p.rec, p.section = nil, ""
	p.seq.Reset()
	return nil
}

func (p *gbParser) addQualifier(text string) {
	text = strings.TrimPrefix(text, "/")
	name, val := text, ""
	if i := strings.Index(text, "="); i >= 0 {
		name, val = text[:i], text[i+1:]
	}
	p.inQuote = false
	if strings.HasPrefix(val, `"`) {
		val = val[1:]
		if strings.HasSuffix(val, `"`) && !strings.HasSuffix(val, `""`) {
			val = val[:len(val)-1]
		} else {
			p.inQuote = true
		}
	}
	p.qual = name
	p.feat.Qualifiers[name] = append(p.feat.Qualifiers[name], val)
}

func (p *gbParser) continueQualifier(text string) {
	vals := p.feat.Qualifiers[p.qual]
	last := vals[len(vals)-1]
	if strings.HasSuffix(text, `"`) {
		text = text[:len(text)-1]
		p.inQuote = false
	}
	sep := " "
	// translations and other sequences wrap without spaces.
	if p.qual == "translation" || last == "" {
		sep = ""
	}
	vals[len(vals)-1] = last + sep + text
}

func (p *gbParser) line(lineNo int, line string) error {
	if strings.HasPrefix(line, "//") {
		return p.finishRecord(lineNo)
	}
	if len(line) > 0 && line[0] != ' ' {
		toks := strings.Fields(line)
		if len(toks) == 0 {
			return nil
		}
		if err := p.finishFeature(lineNo); err != nil {
			return err
		}
		p.section = toks[0]
		if p.section == "LOCUS" {
			if err := p.finishRecord(lineNo); err != nil {
				return err
			}
			p.section = "LOCUS"
			p.rec = &Record{}
			if len(toks) > 1 {
				p.rec.Name = toks[1]
			}
			if len(toks) > 2 {
				p.rec.Length, _ = strconv.Atoi(toks[2])
			}
		}
		return nil
	}
	if p.rec == nil {
		return input.Parsef(p.path, lineNo, "data before LOCUS line")
	}
	switch p.section {
	case "ORIGIN":
		for _, tok := range strings.Fields(line) {
			if tok[0] >= '0' && tok[0] <= '9' {
				continue
			}
			p.seq.WriteString(strings.ToUpper(tok))
		}
	case "FEATURES":
		if len(line) > featureIndent && line[featureIndent] != ' ' && strings.TrimSpace(line[:featureIndent]) == "" {
			if err := p.finishFeature(lineNo); err != nil {
				return err
			}
			toks := strings.Fields(line)
			if len(toks) < 2 {
				return input.Parsef(p.path, lineNo, "feature without location")
			}
			p.feat = &GBFeature{Type: toks[0], Location: strings.Join(toks[1:], ""), Qualifiers: make(map[string][]string)}
			return nil
		}
		if p.feat == nil {
			return input.Parsef(p.path, lineNo, "qualifier outside of a feature")
		}
		text := strings.TrimSpace(line)
		if len(line) < qualifierIndent {
			return nil
		}
		switch {
		case p.inQuote:
			p.continueQualifier(text)
		case strings.HasPrefix(text, "/"):
			p.addQualifier(text)
		case p.qual == "":
			p.feat.Location += text
		}
	}
	return nil
}

// ReadGenBank parses every record in the GenBank file at path.
func ReadGenBank(path string) ([]Record, error) {
	rdr, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	p := &gbParser{path: path}
	var last int
	if err := input.EachLine(rdr.Reader, func(lineNo int, line string) error {
		last = lineNo
		return p.line(lineNo, line)
	}); err != nil {
		return nil, err
	}
	// tolerate a missing trailing "//".
	if err := p.finishRecord(last); err != nil {
		return nil, err
	}
	if len(p.records) == 0 {
		return nil, input.Parsef(path, last, "no LOCUS records")
	}
	return p.records, nil
}
