package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RamySaleem/seismiqb/internal/geometry"
	"github.com/RamySaleem/seismiqb/internal/horizon"
)

var infoHorizon string

// infoCmd prints the indexing structure of a cube.
var infoCmd = &cobra.Command{
	Use:   "info <cube>",
	Short: "Print cube axis extents and line ranges",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().StringVar(&infoHorizon, "horizon", "", "Also report this horizon's coverage of the cube")
}

func runInfo(cmd *cobra.Command, args []string) error {
	g, err := geometry.Open(args[0])
	if err != nil {
		return err
	}
	defer g.Close()

	fmt.Print(geometry.Summary(g))

	lens := g.Lens()
	total := lens[0] * lens[1]
	dead := 0
	for _, v := range g.ZeroTraces().Data {
		if v == 1 {
			dead++
		}
	}
	if dead > 0 {
		fmt.Printf("  dead traces %d of %d\n", dead, total)
	}

	if infoHorizon != "" {
		h, err := horizon.Load(infoHorizon)
		if err != nil {
			return err
		}
		fmt.Printf("  %s coverage %.4f\n", h.Name, h.Coverage(g))
	}
	return nil
}
