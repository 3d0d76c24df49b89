package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asr-benchmark-hub/backend/internal/datastore"
)

func TestWordErrorRate(t *testing.T) {
	t.Parallel()

	got, err := WordErrorRate("the quick brown fox", "the quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	// One substitution over four reference words.
	got, err = WordErrorRate("the quick brown fox", "the quick brown box")
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)

	// One deletion.
	got, err = WordErrorRate("the quick brown fox", "the quick brown")
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)

	// One insertion.
	got, err = WordErrorRate("the quick brown fox", "the very quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)
}

func TestWordErrorRate_EmptyReference(t *testing.T) {
	t.Parallel()

	got, err := WordErrorRate("", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = WordErrorRate("", "hello there")
	assert.ErrorIs(t, err, ErrEmptyReference)
	assert.Equal(t, 1.0, got)
}

func TestCharErrorRate(t *testing.T) {
	t.Parallel()

	got, err := CharErrorRate("abcd", "abcx")
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)
}

func entry(model string, wer, inference float64) *datastore.BenchmarkEntry {
	return &datastore.BenchmarkEntry{Model: model, WERScore: wer, InferenceTime: inference}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize([]*datastore.BenchmarkEntry{
		entry("whisper", 0.1, 1.0),
		entry("wav2vec", 0.3, 3.0),
	})
	assert.Equal(t, 2, s.TotalFiles)
	assert.Equal(t, 0.2, s.AvgWER)
	assert.Equal(t, 2.0, s.AvgInferenceTime)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarize_Rounding(t *testing.T) {
	t.Parallel()

	s := Summarize([]*datastore.BenchmarkEntry{
		entry("a", 0.1, 1.0),
		entry("a", 0.2, 1.0),
		entry("a", 0.2, 1.0),
	})
	assert.Equal(t, 0.1667, s.AvgWER)
}

func TestPerModel(t *testing.T) {
	t.Parallel()

	got := PerModel([]*datastore.BenchmarkEntry{
		entry("whisper", 0.1, 1.0),
		entry("whisper", 0.3, 2.0),
		entry("wav2vec", 0.4, 0.5),
		entry("", 0.9, 9.0),
	})

	require.Len(t, got, 3)
	// Sorted by model name: Unknown, wav2vec, whisper.
	assert.Equal(t, "Unknown", got[0].Model)
	assert.Equal(t, "wav2vec", got[1].Model)
	assert.Equal(t, "whisper", got[2].Model)
	assert.Equal(t, 0.2, got[2].AvgWER)
	assert.Equal(t, 1.5, got[2].AvgInferenceTime)
}
