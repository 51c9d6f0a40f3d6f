package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RamySaleem/seismiqb/internal/geometry"
	"github.com/RamySaleem/seismiqb/internal/horizon"
)

// convertCmd converts cubes and point clouds between formats.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert cubes and point clouds",
}

// convertCubeCmd converts a SEG-Y cube to the fast binary format.
var convertCubeCmd = &cobra.Command{
	Use:   "cube <src.sgy> [dst.qblob]",
	Short: "Convert a SEG-Y cube to the fast binary format",
	Long: `Reads a SEG-Y cube and writes the converted binary volume, which
loads without trace indexing. The destination defaults to the source
path with a .qblob extension.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvertCube,
}

var (
	cloudColumns []string
	cloudOrder   []string
)

// convertCloudCmd strips a horizon export down to the plain form.
var convertCloudCmd = &cobra.Command{
	Use:   "cloud <src> <dst>",
	Short: "Convert a horizon point-cloud export to the plain three-column form",
	Long: `Rewrites a horizon point-cloud file keeping only the requested
columns, dropping unparsable rows and sorting by (iline, xline). The
default column layout matches a Petrel horizon export.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvertCloud,
}

func init() {
	convertCloudCmd.Flags().StringSliceVar(&cloudColumns, "columns", nil, "Source column names, '_' for ignored columns (default: Petrel layout)")
	convertCloudCmd.Flags().StringSliceVar(&cloudOrder, "order", nil, "Columns to keep, in output order (default: iline,xline,height)")

	convertCmd.AddCommand(convertCubeCmd, convertCloudCmd)
}

func runConvertCube(cmd *cobra.Command, args []string) error {
	src := args[0]
	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".qblob"
	if len(args) == 2 {
		dst = args[1]
	}

	g, err := geometry.OpenSEGY(src)
	if err != nil {
		return err
	}
	defer g.Close()

	logger.Info("converting cube",
		zap.String("src", src),
		zap.String("dst", dst))
	if err := geometry.ConvertSEGY(g, dst); err != nil {
		return err
	}
	fmt.Printf("Converted %s -> %s\n", src, dst)
	return nil
}

func runConvertCloud(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]
	if err := horizon.ConvertCloud(src, dst, cloudColumns, cloudOrder); err != nil {
		return err
	}
	logger.Info("cloud converted",
		zap.String("src", src),
		zap.String("dst", dst))
	fmt.Printf("Converted %s -> %s\n", src, dst)
	return nil
}
