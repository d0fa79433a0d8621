package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store persists candle series.
type Store interface {
	Load(symbol, timeframe string) (*CandleSet, error)
	Save(cs *CandleSet) error
}

var csvHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// CSVStore keeps one CSV file per symbol/timeframe under Dir.
type CSVStore struct {
	Dir string
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{Dir: dir}
}

// Path returns the file used for symbol/timeframe, e.g. data/BTCUSDT_1h.csv.
func (s *CSVStore) Path(symbol, timeframe string) string {
	name := strings.ReplaceAll(symbol, "/", "") + "_" + timeframe + ".csv"
	return filepath.Join(s.Dir, name)
}

// Load reads a saved series. A missing file yields ErrNotFound.
func (s *CSVStore) Load(symbol, timeframe string) (*CandleSet, error) {
	path := s.Path(symbol, timeframe)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	candles, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return NewCandleSet(symbol, timeframe, candles), nil
}

// Save writes the series, replacing any previous file.
func (s *CSVStore) Save(cs *CandleSet) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	path := s.Path(cs.Symbol, cs.Timeframe)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, cs.Candles); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// WriteCSV writes a header row followed by one row per candle.
func WriteCSV(w io.Writer, candles []Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range candles {
		err := cw.Write([]string{
			c.Time.UTC().Format(time.RFC3339Nano),
			f(c.Open),
			f(c.High),
			f(c.Low),
			f(c.Close),
			f(c.Volume),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows written by WriteCSV. The header row is optional.
func ReadCSV(r io.Reader) ([]Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []Candle
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if line == 1 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "timestamp") {
			continue
		}
		if len(row) < 6 {
			return nil, fmt.Errorf("line %d: expected 6 fields, got %d", line, len(row))
		}

		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad timestamp %q: %w", line, row[0], err)
		}

		var vals [5]float64
		for i := range vals {
			vals[i], err = strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s %q: %w", line, csvHeader[i+1], row[i+1], err)
			}
		}

		out = append(out, Candle{
			Time:   ts.UTC(),
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return out, nil
}

// shortest representation that parses back to the same float64
func f(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
