package report

import (
	"fmt"

	"github.com/heimdalr/dag"

	"github.com/finstmt/fsg/pkg/expr"
)

// buildRowGraph builds the @N reference graph over value-producing rows and
// rejects cycles. AddEdge refuses edges that would close a loop, so a
// definition-time cycle surfaces as a load error instead of hanging the
// renderer.
func buildRowGraph(d *Definition) error {
	g := dag.NewDAG()

	for i := range d.Rows {
		if !d.Rows[i].HasValues() {
			continue
		}
		id := fmt.Sprintf("@%d", i+1)
		if err := g.AddVertexByID(id, id); err != nil {
			return fmt.Errorf("report %q: failed to add row %s: %w", d.ID, id, err)
		}
	}

	for i := range d.Rows {
		row := &d.Rows[i]
		if row.Kind != RowCalc {
			continue
		}
		rowID := fmt.Sprintf("@%d", i+1)

		deps, err := expr.Dependencies(row.Expression)
		if err != nil {
			return fmt.Errorf("report %q row %d: %w", d.ID, i+1, err)
		}

		for _, dep := range deps {
			if _, ok := parseOrderRef(dep); !ok {
				continue // variable references cannot cycle through rows
			}
			if err := g.AddEdge(dep, rowID); err != nil {
				return fmt.Errorf("%w: report %q row %s depends on %s: %w",
					ErrDefinitionCycle, d.ID, rowID, dep, err)
			}
		}
	}

	return nil
}
