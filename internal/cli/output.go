package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TrevorS/balltree"
)

// writeNeighbors prints one neighbor per line as "index<TAB>distance<TAB>coords".
func writeNeighbors(w io.Writer, nbrs []balltree.Neighbor) error {
	for _, nb := range nbrs {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", nb.Index, formatFloat(nb.Distance), formatPoint(nb.Point)); err != nil {
			return err
		}
	}
	return nil
}

func formatPoint(p []float64) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
