// Package reference loads the reference sequence shown alongside the coverage charts.
package reference

import (
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/brentp/faidx"
	"github.com/brentp/wgscovplot/input"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Sequence is a named reference sequence.
type Sequence struct {
	Name string
	Seq  string
}

// Len is the length of the sequence.
func (s Sequence) Len() int { return len(s.Seq) }

// Load reads the sequence called name from a FASTA file. The first sequence is
// used when name is empty. An indexed FASTA (path.fai) is read with faidx.
func Load(path, name string) (Sequence, error) {
	if err := input.Check(path); err != nil {
		return Sequence{}, err
	}
	if _, err := os.Stat(path + ".fai"); err == nil && name != "" {
		return loadIndexed(path, name)
	}
	return loadStream(path, name)
}

func loadIndexed(path, name string) (Sequence, error) {
	fa, err := faidx.New(path)
	if err != nil {
		return Sequence{}, errors.Wrapf(err, "reading index for %s", path)
	}
	defer fa.Close()
	rec, ok := fa.Index[name]
	if !ok {
		return Sequence{}, input.Invariantf("%s not found in %s.fai", name, path)
	}
	s, err := fa.Get(name, 0, rec.Length)
	if err != nil {
		return Sequence{}, errors.Wrapf(err, "fetching %s from %s", name, path)
	}
	log.WithField("path", path).Debugf("read %s (%d bp) via faidx", name, len(s))
	return Sequence{Name: name, Seq: strings.ToUpper(s)}, nil
}

func loadStream(path, name string) (Sequence, error) {
	rdr, err := input.Open(path)
	if err != nil {
		return Sequence{}, err
	}
	defer rdr.Close()

	sc := seqio.NewScanner(fasta.NewReader(rdr, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		id := s.Name()
		if name != "" && id != name {
			continue
		}
		b := make([]byte, len(s.Seq))
		for i, l := range s.Seq {
			b[i] = byte(l)
		}
		return Sequence{Name: id, Seq: strings.ToUpper(string(b))}, nil
	}
	if err := sc.Error(); err != nil {
		return Sequence{}, input.Parsef(path, 0, "%v", err)
	}
	if name == "" {
		return Sequence{}, input.Parsef(path, 0, "no sequences")
	}
	return Sequence{}, input.Invariantf("%s not found in %s", name, path)
}
