// Command lvx2pcd converts one or more Livox LVX capture files into PCD
// point-cloud files, optionally recording run outcomes in a SQLite history
// database.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/lvxtool/internal/convert"
	"github.com/banshee-data/lvxtool/internal/convertdb"
	"github.com/banshee-data/lvxtool/internal/lvx"
	"github.com/banshee-data/lvxtool/internal/pcd"
	"github.com/banshee-data/lvxtool/internal/pointcloud"
	"github.com/banshee-data/lvxtool/internal/version"
)

var (
	output         = flag.String("o", "", "Output PCD path (single input only; default: input name with .pcd)")
	outDir         = flag.String("outdir", ".", "Output directory for converted files")
	asciiFormat    = flag.Bool("ascii", false, "Write ASCII PCD body instead of binary float")
	noReflectivity = flag.Bool("no-reflectivity", false, "Omit the reflectivity field from the output")
	dbFile         = flag.String("db", "", "Optional SQLite file to record conversion history")
	showStats      = flag.Bool("stats", false, "Print point cloud statistics after each conversion")
	quiet          = flag.Bool("quiet", false, "Suppress progress output")
	progressEvery  = flag.Int("progress-every", 64, "Packets between progress reports")
	showVersion    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("lvx2pcd", version.String())
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: lvx2pcd [flags] input.lvx [input2.lvx ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *output != "" && len(inputs) > 1 {
		log.Fatal("-o is only valid with a single input; use -outdir for batches")
	}

	var history *convertdb.DB
	if *dbFile != "" {
		var err error
		history, err = convertdb.New(*dbFile)
		if err != nil {
			log.Fatalf("failed to open history database: %v", err)
		}
		defer history.Close()
	}

	cfg := convert.Config{
		Format:              pcd.FormatBinary,
		IncludeReflectivity: !*noReflectivity,
		ProgressEvery:       *progressEvery,
	}
	if *asciiFormat {
		cfg.Format = pcd.FormatASCII
	}

	failed := 0
	for _, input := range inputs {
		var obs convert.Observer
		if !*quiet {
			obs = newProgressLogger()
		}
		outcome := convertOne(input, cfg, obs)
		report(outcome)
		if history != nil {
			recordOutcome(history, outcome, cfg.Format)
		}
		if outcome.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		log.Printf("%d of %d conversions failed", failed, len(inputs))
		os.Exit(1)
	}
}

func convertOne(input string, cfg convert.Config, obs convert.Observer) convert.BatchOutcome {
	out := *output
	if out == "" {
		out = convert.OutputName(*outDir, input)
	}
	cfg.OutputPath = out

	res, err := convert.New(cfg, obs).Convert(input)
	return convert.BatchOutcome{Input: input, Output: out, Result: res, Err: err}
}

func report(o convert.BatchOutcome) {
	if o.Err != nil {
		log.Printf("FAILED %s: %v", o.Input, o.Err)
		return
	}
	suffix := ""
	if n := len(o.Result.Warnings); n > 0 {
		suffix = fmt.Sprintf(" (%d corrupt-frame warnings)", n)
	}
	log.Printf("converted %s -> %s: %d points, %d bytes%s",
		o.Input, o.Output, o.Result.PointCount, o.Result.BytesWritten, suffix)

	if *showStats {
		printStats(o.Output, o.Input)
	}
}

// printStats re-decodes the input to summarise the cloud; the converter does
// not hand its cloud back out.
func printStats(outputPath, inputPath string) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Printf("stats: %v", err)
		return
	}
	r := lvx.NewReader(data)
	if _, err := lvx.ParseHeader(r); err != nil {
		log.Printf("stats: %v", err)
		return
	}
	cloud := pointcloud.New(0)
	dec := lvx.NewDecoder(r)
	for {
		batch, err := dec.Next()
		if err != nil {
			break
		}
		cloud.Append(batch.Points...)
	}

	s := pointcloud.Summarise(cloud)
	log.Printf("stats %s: %d points", outputPath, s.Count)
	log.Printf("  x: [%.3f, %.3f] mean %.3f stddev %.3f", s.X.Min, s.X.Max, s.X.Mean, s.X.StdDev)
	log.Printf("  y: [%.3f, %.3f] mean %.3f stddev %.3f", s.Y.Min, s.Y.Max, s.Y.Mean, s.Y.StdDev)
	log.Printf("  z: [%.3f, %.3f] mean %.3f stddev %.3f", s.Z.Min, s.Z.Max, s.Z.Mean, s.Z.StdDev)
	log.Printf("  range: [%.3f, %.3f] mean %.3f", s.Range.Min, s.Range.Max, s.Range.Mean)
	if s.HasReflectivity {
		log.Printf("  reflectivity: mean %.1f", s.MeanReflectivity)
	}
}

func recordOutcome(db *convertdb.DB, o convert.BatchOutcome, format pcd.Format) {
	run := convertdb.Run{
		InputPath:  o.Input,
		OutputPath: o.Output,
		Format:     format.String(),
		Status:     "ok",
	}
	if o.Err != nil {
		run.Status = "failed"
		run.Error = o.Err.Error()
		var cerr *convert.Error
		if errors.As(o.Err, &cerr) {
			run.Warnings = cerr.Warnings
		}
	} else {
		run.PointCount = o.Result.PointCount
		run.BytesWritten = o.Result.BytesWritten
		run.Warnings = o.Result.Warnings
	}
	if _, err := db.RecordRun(run); err != nil {
		log.Printf("failed to record run for %s: %v", o.Input, err)
	}
}

// progressLogger logs decade progress steps so long conversions show life
// without flooding the log.
type progressLogger struct {
	lastDecade int
}

func newProgressLogger() *progressLogger { return &progressLogger{lastDecade: -1} }

func (p *progressLogger) Progress(fraction float64) {
	decade := int(fraction * 10)
	if decade > p.lastDecade {
		p.lastDecade = decade
		log.Printf("progress: %d%%", decade*10)
	}
}
