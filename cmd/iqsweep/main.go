// Command iqsweep runs the sweep spectral pipeline over recorded raw I/Q
// bursts and emits calibrated sweep spectra.
//
// Usage:
//
//	iqsweep [flags]
//
// The input is a stream of interleaved signed 8-bit I/Q samples, read as
// consecutive bursts of 2*fft_size bytes from a file or stdin. Each burst
// is one frequency hop; every step_count bursts assemble one full sweep,
// which is written as hackrf_sweep style CSV rows or Parquet rows.
//
// Examples:
//
//	iqsweep -in capture.iq8
//	iqsweep -in capture.iq8 -fft 1024 -steps 16 -threads 4
//	iqsweep -in capture.iq8 -format parquet -out capture.parquet
//	iqsweep -in - -config plan.yaml -detect
//	iqsweep -in capture.iq8 -rssi
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-sweep/config"
	"github.com/cwbudde/algo-sweep/detect"
	"github.com/cwbudde/algo-sweep/record"
	"github.com/cwbudde/algo-sweep/sweep"
)

func main() {
	var (
		configPath = flag.String("config", "plan.yaml", "sweep plan file (missing file uses defaults)")
		inPath     = flag.String("in", "", "raw I/Q input file, '-' for stdin")
		outPath    = flag.String("out", "", "output file (default stdout)")
		format     = flag.String("format", "csv", "output format: csv or parquet")
		fftSize    = flag.Int("fft", 0, "override fft size")
		steps      = flag.Int("steps", 0, "override step count")
		threads    = flag.Int("threads", 0, "override transform worker count")
		raw        = flag.Bool("raw", false, "skip streaming DC-bias removal")
		runDetect  = flag.Bool("detect", false, "report baseline anomalies on stderr")
		rssiOnly   = flag.Bool("rssi", false, "print one RSSI estimate per burst instead of sweeps")
		maxSweeps  = flag.Int("max", 0, "stop after this many sweeps (0 = until EOF)")
	)

	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("iqsweep: ")

	if *inPath == "" {
		log.Fatal("missing -in")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if *fftSize > 0 {
		cfg.FFTSize = *fftSize
	}

	if *threads > 0 {
		cfg.FFTThreads = *threads
	}

	if *raw {
		cfg.RawSamples = true
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	engineCfg := cfg.EngineConfig()
	if *steps > 0 {
		engineCfg.StepCount = *steps
	}

	var engine sweep.Engine

	if err := engine.Prepare(engineCfg); err != nil {
		log.Fatal(err)
	}
	defer engine.Cleanup()

	in, err := openInput(*inPath)
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	out, err := openOutput(*outPath)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	if *rssiOnly {
		if err := runRSSI(&engine, in, out); err != nil {
			log.Fatal(err)
		}

		return
	}

	n, err := runSweeps(&engine, cfg, in, out, *format, *runDetect, *maxSweeps)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("%d sweep(s) processed", n)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(bufio.NewReader(os.Stdin)), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// nopWriteCloser guards stdout from the deferred Close.
type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}

	return os.Create(path)
}

// sweepSink abstracts the two recording formats.
type sweepSink interface {
	WriteSweep(hzStart, hzStep, hzBinWidth float64, fftSize int, sweep []float64) error
}

type closableSink interface {
	Close() error
}

func newSink(format string, out io.Writer, cfg config.Config) (sweepSink, error) {
	switch format {
	case "csv":
		return record.NewCSVWriter(out), nil
	case "parquet":
		return record.NewParquetWriter(out, cfg), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func runSweeps(engine *sweep.Engine, cfg config.Config, in io.Reader, out io.Writer, format string, runDetect bool, maxSweeps int) (int, error) {
	sink, err := newSink(format, out, cfg)
	if err != nil {
		return 0, err
	}

	var detector *detect.Baseline
	if runDetect {
		detector = detect.New(cfg.DetectConfig())
	}

	hzStart := cfg.FreqStartMHz * 1e6
	hzStep := cfg.StepMHz * 1e6
	binWidth := cfg.BinWidthHz()

	sweeps := 0

	var sinkErr error

	collector, err := sweep.NewCollector(engine, func(done []float64) {
		if err := sink.WriteSweep(hzStart, hzStep, binWidth, engine.FFTSize(), done); err != nil && sinkErr == nil {
			sinkErr = err
		}

		if detector != nil {
			reportSegments(cfg, detector, done)
		}

		sweeps++
	})
	if err != nil {
		return 0, err
	}

	burst := make([]byte, 2*engine.FFTSize())

	for {
		if _, err := io.ReadFull(in, burst); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return sweeps, err
		}

		if _, err := collector.Feed(burst); err != nil {
			return sweeps, err
		}

		if sinkErr != nil {
			return sweeps, sinkErr
		}

		if maxSweeps > 0 && sweeps >= maxSweeps {
			break
		}
	}

	if c, ok := sink.(closableSink); ok {
		if err := c.Close(); err != nil {
			return sweeps, err
		}
	}

	return sweeps, nil
}

func reportSegments(cfg config.Config, detector *detect.Baseline, done []float64) {
	segments, err := detector.Push(done)
	if err != nil {
		log.Print(err)
		return
	}

	if len(segments) == 0 {
		return
	}

	tw := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "START MHZ\tEND MHZ\tLEVEL DB\tDELTA DB")

	binsPerStep := cfg.FFTSize
	binMHz := cfg.BinWidthHz() / 1e6

	for _, seg := range segments {
		startMHz := cfg.FreqStartMHz + float64(seg.Start/binsPerStep)*cfg.StepMHz + float64(seg.Start%binsPerStep)*binMHz
		endMHz := cfg.FreqStartMHz + float64(seg.End/binsPerStep)*cfg.StepMHz + float64(seg.End%binsPerStep)*binMHz

		fmt.Fprintf(tw, "%.3f\t%.3f\t%.1f\t%.1f\n", startMHz, endMHz, seg.MeanLevelDB, seg.MeanDeltaDB)
	}

	tw.Flush()
}

func runRSSI(engine *sweep.Engine, in io.Reader, out io.Writer) error {
	burst := make([]byte, 2*engine.FFTSize())

	for {
		if _, err := io.ReadFull(in, burst); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}

			return err
		}

		rssi, err := engine.EstimateRSSI(burst)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(out, "%.2f\n", rssi); err != nil {
			return err
		}
	}
}
