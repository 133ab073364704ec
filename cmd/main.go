package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/surftemp/landsat-importer/internal/batch"
	"github.com/surftemp/landsat-importer/internal/geo"
	"github.com/surftemp/landsat-importer/internal/gridded/ncwriter"
	"github.com/surftemp/landsat-importer/internal/notification"
	"github.com/surftemp/landsat-importer/internal/properties"
	"github.com/surftemp/landsat-importer/internal/quantize"
	"github.com/surftemp/landsat-importer/internal/radiometry"
	"github.com/surftemp/landsat-importer/internal/raster/gdalraster"
	"github.com/surftemp/landsat-importer/internal/scene"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func printBanner() {
	figure1 := figure.NewFigure("Landsat", "isometric1", true)
	figure2 := figure.NewFigure("Importer", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

type cliOptions struct {
	bands          []string
	includeAngles  bool
	pattern        string
	minLat, maxLat float64
	minLon, maxLon float64
	limit          int
	offset         int
	batch          int
	mode           radiometry.Mode
	exportInt16    []string
	injectMetadata []string
	report         string
	quicklook      string
	progress       bool
	logLevel       string
}

type runFunc func(input string, opts batch.Options, log *logrus.Logger) error

func newRootCommand(run runFunc) *cobra.Command {
	cli := &cliOptions{}
	cmd := &cobra.Command{
		Use:   "landsat-importer <input-path> <output-path>",
		Short: "Convert Landsat Level-1/Level-2 scenes to CF NetCDF4",
		Long: `Convert Landsat 7/8/9 scenes to CF NetCDF4.

The input is an MTL metadata file, a scene folder, a folder of scenes or a
.csv list of scene paths. The output is a .nc file for a single scene,
otherwise a folder. List flags (--bands, --export-int16, --inject-metadata)
consume the tokens that follow them, so give the positional paths first.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cli.logLevel)
			if err != nil {
				return err
			}
			opts, err := buildOptions(cmd, cli, args[1])
			if err != nil {
				return err
			}
			return run(args[0], opts, log)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&cli.bands, "bands", nil, "bands to export, default all available except panchromatic")
	flags.BoolVar(&cli.includeAngles, "include-angles", false, "also export the solar and sensor angle bands")
	flags.StringVar(&cli.pattern, "output-file-pattern", properties.OutputPattern(), "output file name template")
	flags.Float64Var(&cli.minLat, "min-lat", 0, "bounding box south edge")
	flags.Float64Var(&cli.maxLat, "max-lat", 0, "bounding box north edge")
	flags.Float64Var(&cli.minLon, "min-lon", 0, "bounding box west edge")
	flags.Float64Var(&cli.maxLon, "max-lon", 0, "bounding box east edge")
	flags.IntVar(&cli.limit, "limit", 0, "process only this many scenes")
	flags.IntVar(&cli.offset, "offset", 0, "start processing at this offset in the list")
	flags.IntVar(&cli.batch, "batch", 0, "write outputs to <output>/<index/batch>")
	flags.Var(&cli.mode, "export-optical-as", "corrected_reflectance, reflectance or radiance")
	flags.StringArrayVar(&cli.exportInt16, "export-int16", nil, "<band> <scale> <offset>, store a band as int16")
	flags.StringArrayVar(&cli.injectMetadata, "inject-metadata", nil, "key=value global attributes to add")
	flags.StringVar(&cli.report, "report", "", "write a per-scene CSV report")
	flags.StringVar(&cli.quicklook, "quicklook", "", "render this band as a PNG next to each output")
	flags.BoolVar(&cli.progress, "progress", false, "show a progress bar")
	flags.StringVar(&cli.logLevel, "log-level", properties.LogLevel(), "panic, fatal, error, warn, info, debug or trace")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printBanner()
			fmt.Println("landsat-importer", version)
		},
	})
	return cmd
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(lvl)
	return log, nil
}

// buildOptions validates the flags before any scene is touched.
func buildOptions(cmd *cobra.Command, cli *cliOptions, output string) (batch.Options, error) {
	pattern, err := scene.ParsePattern(cli.pattern)
	if err != nil {
		return batch.Options{}, err
	}
	if cli.limit < 0 || cli.offset < 0 || cli.batch < 0 {
		return batch.Options{}, fmt.Errorf("--limit, --offset and --batch must not be negative")
	}

	opts := batch.Options{
		Output:    output,
		Offset:    cli.offset,
		Limit:     cli.limit,
		Batch:     cli.batch,
		Report:    cli.report,
		Quicklook: cli.quicklook,
		Progress:  cli.progress,
		Scene: scene.Options{
			IncludeAngles: cli.includeAngles,
			Mode:          cli.mode,
			Pattern:       pattern,
			LatLon:        true,
			History:       "landsat-importer " + strings.Join(os.Args[1:], " "),
			Version:       version,
		},
	}

	for _, b := range cli.bands {
		if b = strings.TrimSpace(b); b != "" {
			opts.Scene.Bands = append(opts.Scene.Bands, b)
		}
	}

	if opts.Scene.BBox, err = boundingBox(cmd, cli); err != nil {
		return batch.Options{}, err
	}

	for _, v := range cli.exportInt16 {
		parts := strings.Split(v, ",")
		if len(parts) != 3 {
			return batch.Options{}, fmt.Errorf("--export-int16 needs <band> <scale> <offset>, got %q", v)
		}
		spec, err := quantize.ParseSpec(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]))
		if err != nil {
			return batch.Options{}, err
		}
		opts.Scene.Encodings = append(opts.Scene.Encodings, spec)
	}

	for _, kv := range cli.injectMetadata {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return batch.Options{}, fmt.Errorf("--inject-metadata expects key=value, got %q", kv)
		}
		opts.Scene.InjectMetadata = append(opts.Scene.InjectMetadata, [2]string{key, value})
	}
	return opts, nil
}

func boundingBox(cmd *cobra.Command, cli *cliOptions) (*geo.BoundingBox, error) {
	names := []string{"min-lat", "max-lat", "min-lon", "max-lon"}
	set := 0
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case len(names):
		box, err := geo.NewBoundingBox(cli.minLat, cli.maxLat, cli.minLon, cli.maxLon)
		if err != nil {
			return nil, err
		}
		return &box, nil
	default:
		return nil, errors.New("bounding box needs all of --min-lat --max-lat --min-lon --max-lon")
	}
}

func runImport(input string, opts batch.Options, log *logrus.Logger) error {
	inputs, err := batch.Inputs(input)
	if err != nil {
		return err
	}

	opts.SingleScene = batch.IsSingleScene(input)

	driver := batch.NewDriver(gdalraster.New(log), ncwriter.New(), log)
	if d := notification.NewDiscordFromEnv(); d != nil {
		driver.Notifier = d
	}
	summary, err := driver.Run(inputs, opts)
	if summary != nil {
		log.Info(summary.String())
	}
	return err
}

func recoverPanic() {
	if r := recover(); r != nil {
		stack := debug.Stack()
		fmt.Fprintf(os.Stderr, "\n\033[31mPANIC: %v\033[0m\n%s\n", r, stack)
		if d := notification.NewDiscordFromEnv(); d != nil {
			errMessage := fmt.Sprintf("landsat-importer panic:\n\n%v\n\nStack trace:\n%s", r, stack)
			if err := d.SendErrorNotification(errMessage); err != nil {
				fmt.Fprintf(os.Stderr, "\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
		os.Exit(2)
	}
}

func main() {
	defer recoverPanic()

	if err := properties.Load(".env", "../.env"); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mInvalid .env file: %v\033[0m\n", err)
		os.Exit(1)
	}

	args, err := normalizeArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "\033[31m%v\033[0m\n", err)
		os.Exit(1)
	}
	root := newRootCommand(runImport)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError: %v\033[0m\n", err)
		os.Exit(1)
	}
}
