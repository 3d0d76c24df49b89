package ingest

import "strings"

// Canonical column names every normalized upload row must contain. These are
// the wire contract for benchmark uploads.
const (
	ColAudioFileName = "Audio File Name"
	ColAudioLength   = "Audio Length"
	ColModel         = "Model"
	ColGroundTruth   = "Ground_truth"
	ColTranscription = "Transcription"
	ColWERScore      = "WER Score"
	ColInferenceTime = "Inference time (in sec)"
)

// CanonicalColumns lists the canonical names in wire order.
var CanonicalColumns = []string{
	ColAudioFileName,
	ColAudioLength,
	ColModel,
	ColGroundTruth,
	ColTranscription,
	ColWERScore,
	ColInferenceTime,
}

// AliasTable maps a canonical column name to the ordered list of alternate
// header spellings recognized for it. Matching is case-insensitive and the
// first alias present among the observed headers wins.
type AliasTable map[string][]string

// DefaultAliases covers the header spellings seen across spreadsheet
// exporters that feed the hub. Loaded once at startup and treated as
// immutable.
func DefaultAliases() AliasTable {
	return AliasTable{
		ColAudioFileName: {"file name", "audio_name", "audio file", "name", "audio name"},
		ColAudioLength:   {"duration", "audio length (sec)", "length"},
		ColModel:         {"model name"},
		ColGroundTruth:   {"ground truth", "actual text", "reference"},
		ColTranscription: {"output", "prediction", "transcript"},
		ColWERScore:      {"wer", "word error rate"},
		ColInferenceTime: {"latency", "inference", "time"},
	}
}

// Normalize guarantees that every canonical column is present in the table.
// An exact header match is kept as-is; otherwise the first case-insensitive
// alias match is copied under the canonical name; otherwise the column is
// synthesized filled with empty strings. Normalization never fails —
// validity checking is deferred to ValidateRows.
func Normalize(t *Table, aliases AliasTable) *Table {
	lower := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		key := strings.ToLower(h)
		if _, seen := lower[key]; !seen {
			lower[key] = i
		}
	}

	for _, canonical := range CanonicalColumns {
		if t.columnIndex(canonical) >= 0 {
			continue
		}

		found := false
		for _, alias := range aliases[canonical] {
			if idx, ok := lower[strings.ToLower(alias)]; ok {
				t.appendColumn(canonical, t.columnValues(idx))
				found = true
				break
			}
		}

		if !found {
			t.appendColumn(canonical, nil)
		}
	}

	return t
}
