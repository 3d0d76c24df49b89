package ingest

import (
	"strconv"
	"strings"
)

// BenchmarkRow is one fully coerced spreadsheet row. Every field is present:
// absent source columns were defaulted to empty strings by Normalize, which
// the per-field parsers turn into "" / 0.0.
type BenchmarkRow struct {
	AudioFileName        string  `json:"Audio File Name"`
	AudioLengthSeconds   float64 `json:"Audio Length"`
	Model                string  `json:"Model"`
	GroundTruth          string  `json:"Ground_truth"`
	Transcription        string  `json:"Transcription"`
	WERScore             float64 `json:"WER Score"`
	InferenceTimeSeconds float64 `json:"Inference time (in sec)"`
}

// ValidateRows turns a normalized table into canonical benchmark records.
// Processing is fail-fast: the first bad row aborts the upload with a
// RowError carrying the physical spreadsheet row number (header is row 1,
// so data row i maps to row i+2).
func ValidateRows(t *Table) ([]BenchmarkRow, error) {
	if len(t.Rows) == 0 {
		return nil, ErrEmptyUpload
	}

	idx := make(map[string]int, len(CanonicalColumns))
	for _, c := range CanonicalColumns {
		idx[c] = t.columnIndex(c)
	}

	cell := func(row []string, col string) string {
		i := idx[col]
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]BenchmarkRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		physical := i + 2

		audioLength, err := ParseDuration(cell(row, ColAudioLength))
		if err != nil {
			return nil, &RowError{Row: physical, Value: cell(row, ColAudioLength), Cause: err}
		}
		inferenceTime, err := ParseDuration(cell(row, ColInferenceTime))
		if err != nil {
			return nil, &RowError{Row: physical, Value: cell(row, ColInferenceTime), Cause: err}
		}
		wer, err := parseWER(cell(row, ColWERScore))
		if err != nil {
			return nil, &RowError{Row: physical, Value: cell(row, ColWERScore), Cause: err}
		}

		out = append(out, BenchmarkRow{
			AudioFileName:        cell(row, ColAudioFileName),
			AudioLengthSeconds:   audioLength,
			Model:                cell(row, ColModel),
			GroundTruth:          cell(row, ColGroundTruth),
			Transcription:        cell(row, ColTranscription),
			WERScore:             wer,
			InferenceTimeSeconds: inferenceTime,
		})
	}

	if len(out) == 0 {
		return nil, ErrEmptyUpload
	}
	return out, nil
}

// parseWER treats a blank or NaN cell as 0.0. This conflates "no error
// observed" with "not measured"; the observed upstream behavior is kept
// deliberately (see DESIGN.md).
func parseWER(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0.0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Process is the whole-upload pipeline: empty check, column normalization,
// then row validation.
func Process(t *Table, aliases AliasTable) ([]BenchmarkRow, error) {
	if len(t.Rows) == 0 {
		return nil, ErrEmptyUpload
	}
	return ValidateRows(Normalize(t, aliases))
}
