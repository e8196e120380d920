package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/brentp/wgscovplot/covplot"
	"github.com/brentp/wgscovplot/covstats"
	"github.com/brentp/wgscovplot/depthwed"
)

const Version = "0.1.0"

type progPair struct {
	help string
	main func()
}

var progs = map[string]progPair{
	"plot":     {"interactive html coverage report for a set of samples", func() { covplot.Main(Version) }},
	"stats":    {"coverage statistics table for per-base depth files", covstats.Main},
	"depthwed": {"matrix of windowed mean depth for all samples in a manifest", depthwed.Main},
}

func printProgs() {

	var wtr io.Writer = os.Stdout

	fmt.Fprintf(wtr, "wgscovplot Version: %s\n\n", Version)
	var keys []string
	l := 5
	for k := range progs {
		keys = append(keys, k)
		if len(k) > l {
			l = len(k)
		}
	}
	fmtr := "%-" + strconv.Itoa(l) + "s : %s\n"
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(wtr, fmtr, k, progs[k].help)

	}
	os.Exit(1)

}

func main() {

	if len(os.Args) < 2 {
		printProgs()
	}
	var p progPair
	var ok bool
	if p, ok = progs[os.Args[1]]; !ok {
		printProgs()
	}
	// remove the prog name from the call
	os.Args = append(os.Args[:1], os.Args[2:]...)
	p.main()
}
