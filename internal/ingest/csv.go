package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/okian/traderheat/internal/domain/model"
)

// Required column names of a trader tagging export.
const (
	ColumnDate    = "Date"
	ColumnEvent   = "Event"
	ColumnInPlay  = "Scheduled for in-play"
	ColumnTrader  = "Assign a trader"
	utf8BOMPrefix = "\ufeff"
)

// RequiredColumns lists the header fields every export must carry.
var RequiredColumns = []string{ColumnDate, ColumnEvent, ColumnInPlay, ColumnTrader}

// naTokens are field values read as absent, matching common spreadsheet and
// dataframe exports.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNA reports whether a raw field value counts as absent.
func IsNA(v string) bool {
	_, ok := naTokens[v]
	return ok
}

// rawReader yields RawRecords from a CSV stream.
type rawReader struct {
	r       *csv.Reader
	columns map[string]int
	width   int
}

func newRawReader(in io.Reader) (*rawReader, error) {
	br := bufio.NewReader(in)
	if head, err := br.Peek(len(utf8BOMPrefix)); err == nil && bytes.Equal(head, []byte(utf8BOMPrefix)) {
		_, _ = br.Discard(len(utf8BOMPrefix))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	// Free-text trader names may carry a stray quote, as in O"Neil.
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		// A file without even a header holds zero rows.
		return &rawReader{r: r}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedCSV, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, name := range RequiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return &rawReader{r: r, columns: columns, width: len(header)}, nil
}

// next returns the following record or io.EOF.
func (rr *rawReader) next() (model.RawRecord, error) {
	if rr.columns == nil {
		return model.RawRecord{}, io.EOF
	}
	fields, err := rr.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.RawRecord{}, io.EOF
		}
		return model.RawRecord{}, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}
	line, _ := rr.r.FieldPos(0)
	if len(fields) > rr.width {
		return model.RawRecord{}, &LineError{
			Line: line,
			Err:  fmt.Errorf("%w: expected %d fields, saw %d", ErrMalformedCSV, rr.width, len(fields)),
		}
	}

	rec := model.RawRecord{Line: line}
	rec.Date, rec.HasDate = rr.field(fields, ColumnDate)
	rec.Event, rec.HasEvent = rr.field(fields, ColumnEvent)
	rec.ScheduledForInPlay, rec.HasInPlay = rr.field(fields, ColumnInPlay)
	rec.AssignedTrader, rec.HasTrader = rr.field(fields, ColumnTrader)
	return rec, nil
}

// field returns the named value and false when it is missing or an NA token.
func (rr *rawReader) field(fields []string, name string) (string, bool) {
	i := rr.columns[name]
	if i >= len(fields) || IsNA(fields[i]) {
		return "", false
	}
	return fields[i], true
}
