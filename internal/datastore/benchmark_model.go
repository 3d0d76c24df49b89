package datastore

import "time"

// AnonymousCreator marks benchmark entries uploaded without authentication.
const AnonymousCreator = "anonymous"

// BenchmarkEntry maps to the benchmark_entries table: one normalized row of
// an uploaded benchmark spreadsheet.
type BenchmarkEntry struct {
	ID            string    `json:"id"`
	AudioFileName string    `json:"audio_file_name"`
	AudioLength   float64   `json:"audio_length"`
	Model         string    `json:"model"`
	GroundTruth   string    `json:"ground_truth"`
	Transcription string    `json:"transcription"`
	WERScore      float64   `json:"wer_score"`
	InferenceTime float64   `json:"inference_time"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}
