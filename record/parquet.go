package record

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/parquet-go"
)

// Row is one power bin measurement in a Parquet sweep recording.
type Row struct {
	TimestampUS int64   `parquet:"timestamp_us"`
	Sweep       int32   `parquet:"sweep"`
	Step        int32   `parquet:"step"`
	Bin         int32   `parquet:"bin"`
	FrequencyHz float64 `parquet:"frequency_hz"`
	PowerDB     float64 `parquet:"power_db"`
}

// ParquetWriter records sweeps as Parquet rows, one row per bin. The sweep
// counter increments on every WriteSweep call.
type ParquetWriter struct {
	writer *parquet.GenericWriter[Row]
	sweep  int32
	rows   []Row
	now    func() time.Time
}

// NewParquetWriter returns a writer emitting rows to w. meta, when non-nil,
// is serialized to JSON and stored as file metadata under the "config" key
// so a recording carries the sweep parameters that produced it.
func NewParquetWriter(w io.Writer, meta any) *ParquetWriter {
	metaStr := "{}"
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			metaStr = string(b)
		}
	}

	return &ParquetWriter{
		writer: parquet.NewGenericWriter[Row](w,
			parquet.KeyValueMetadata("config", metaStr),
		),
		now: time.Now,
	}
}

// WriteSweep appends one completed sweep buffer holding stepCount*fftSize
// values. Steps are hzStep apart, each spanning fftSize bins of
// hzBinWidth.
func (p *ParquetWriter) WriteSweep(hzStart, hzStep, hzBinWidth float64, fftSize int, sweep []float64) error {
	if fftSize < 1 || len(sweep)%fftSize != 0 {
		return fmt.Errorf("record: sweep length %d is not a multiple of fft size %d", len(sweep), fftSize)
	}

	ts := p.now().UnixMicro()

	if cap(p.rows) < len(sweep) {
		p.rows = make([]Row, len(sweep))
	}

	rows := p.rows[:len(sweep)]
	for i, power := range sweep {
		step := i / fftSize
		bin := i % fftSize

		rows[i] = Row{
			TimestampUS: ts,
			Sweep:       p.sweep,
			Step:        int32(step),
			Bin:         int32(bin),
			FrequencyHz: hzStart + float64(step)*hzStep + float64(bin)*hzBinWidth,
			PowerDB:     power,
		}
	}

	if _, err := p.writer.Write(rows); err != nil {
		return fmt.Errorf("record: write parquet rows: %w", err)
	}

	p.sweep++

	return nil
}

// Close flushes buffered row groups and writes the Parquet footer. The
// recording is unreadable until Close returns.
func (p *ParquetWriter) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("record: close parquet writer: %w", err)
	}

	return nil
}
