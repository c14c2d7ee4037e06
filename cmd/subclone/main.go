// Command subclone runs subclonal deconvolution on one tumour sample.
//
//	subclone run --mutations muts.tsv --segments cna.tsv --purity 0.8 --sample S1 --out results/
//	subclone config --config subclone.yaml
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
