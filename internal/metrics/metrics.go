// Package metrics computes word/character error rates and the dashboard
// aggregates served alongside uploaded benchmark data.
package metrics

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"asr-benchmark-hub/backend/internal/datastore"
)

// ErrEmptyReference reports a WER/CER request whose ground truth is empty
// while the hypothesis is not; the rate cannot be normalized.
var ErrEmptyReference = errors.New("ground truth is empty, error rate cannot be normalized")

var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: func(sourceItem, targetItem interface{}) bool {
		return sourceItem == targetItem
	},
}

// WordErrorRate is (substitutions + insertions + deletions) divided by the
// number of words in the reference.
func WordErrorRate(groundTruth, transcription string) (float64, error) {
	ref := strings.Fields(groundTruth)
	hyp := strings.Fields(transcription)

	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0.0, nil
		}
		return 1.0, ErrEmptyReference
	}

	distance := levenshtein.DistanceForMatrix(toItems(ref), toItems(hyp), editOptions)
	return float64(distance) / float64(len(ref)), nil
}

// CharErrorRate is the same edit-distance ratio over runes.
func CharErrorRate(groundTruth, transcription string) (float64, error) {
	ref := []rune(groundTruth)
	hyp := []rune(transcription)

	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0.0, nil
		}
		return 1.0, ErrEmptyReference
	}

	refItems := make([]interface{}, len(ref))
	for i, r := range ref {
		refItems[i] = r
	}
	hypItems := make([]interface{}, len(hyp))
	for i, r := range hyp {
		hypItems[i] = r
	}

	distance := levenshtein.DistanceForMatrix(refItems, hypItems, editOptions)
	return float64(distance) / float64(len(ref)), nil
}

func toItems(words []string) []interface{} {
	items := make([]interface{}, len(words))
	for i, w := range words {
		items[i] = w
	}
	return items
}

// Summary is the dashboard headline block.
type Summary struct {
	TotalFiles       int     `json:"totalFiles"`
	AvgWER           float64 `json:"avgWer"`
	AvgInferenceTime float64 `json:"avgInferenceTime"`
}

// ModelPerformance is the per-model aggregate row.
type ModelPerformance struct {
	Model            string  `json:"model"`
	AvgWER           float64 `json:"avgWer"`
	AvgInferenceTime float64 `json:"avgInferenceTime"`
}

// Summarize computes the headline statistics over stored entries.
func Summarize(entries []*datastore.BenchmarkEntry) Summary {
	if len(entries) == 0 {
		return Summary{}
	}
	var werSum, inferenceSum float64
	for _, e := range entries {
		werSum += e.WERScore
		inferenceSum += e.InferenceTime
	}
	n := float64(len(entries))
	return Summary{
		TotalFiles:       len(entries),
		AvgWER:           round4(werSum / n),
		AvgInferenceTime: round4(inferenceSum / n),
	}
}

// PerModel groups entries by model name and averages WER and inference
// time, sorted by model name for stable output.
func PerModel(entries []*datastore.BenchmarkEntry) []ModelPerformance {
	if len(entries) == 0 {
		return []ModelPerformance{}
	}

	type acc struct {
		werSum, inferenceSum float64
		count                int
	}
	byModel := map[string]*acc{}
	for _, e := range entries {
		model := e.Model
		if model == "" {
			model = "Unknown"
		}
		a, ok := byModel[model]
		if !ok {
			a = &acc{}
			byModel[model] = a
		}
		a.werSum += e.WERScore
		a.inferenceSum += e.InferenceTime
		a.count++
	}

	out := make([]ModelPerformance, 0, len(byModel))
	for model, a := range byModel {
		n := float64(a.count)
		out = append(out, ModelPerformance{
			Model:            model,
			AvgWER:           round4(a.werSum / n),
			AvgInferenceTime: round4(a.inferenceSum / n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
