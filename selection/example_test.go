package selection_test

import (
	"fmt"

	"github.com/katalvlaran/subclone/mixture"
	"github.com/katalvlaran/subclone/selection"
)

// ExampleSelect fits the reduced grid on two peaks and keeps the best model.
func ExampleSelect() {
	x := append(quantiles(300, 0.45, 0.03), quantiles(200, 0.25, 0.03)...)
	tasks := mixture.ReducedGrid().Tasks()
	fits := make([]*mixture.FitResult, len(tasks))
	errs := make([]error, len(tasks))
	for i, t := range tasks {
		fits[i], errs[i] = mixture.Fit(x, t.K, t.Seed, mixture.DefaultOptions())
	}

	sel, err := selection.Select(mixture.NewFitGrid(tasks, fits, errs), selection.DefaultOptions())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("k:", sel.Best.Config.K, "clusters:", len(sel.Best.Clusters()))
	// Output:
	// k: 2 clusters: 2
}
