package aiservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"asr-benchmark-hub/backend/internal/metrics"
)

// Service turns benchmark data into prose with a Completer. Model output is
// free text; when the expected JSON cannot be extracted from it the result
// carries Fallback=true and a deterministic substitute.
type Service struct {
	completer Completer
}

// NewService wraps a completer.
func NewService(completer Completer) *Service {
	return &Service{completer: completer}
}

// SummarizeRequest carries free text to compress.
type SummarizeRequest struct {
	Content string `json:"content" binding:"required"`
}

// SummarizeResult is the summary of the submitted content.
type SummarizeResult struct {
	Summary string `json:"summary"`
}

// Summarize asks the model for a 2-3 sentence summary of arbitrary content.
func (s *Service) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	prompt := fmt.Sprintf(`Please provide a concise summary of the following content in 2-3 sentences:

%s

Focus on the key insights and main findings.`, req.Content)

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("summarize failed: %w", err)
	}
	return &SummarizeResult{Summary: strings.TrimSpace(text)}, nil
}

// ReportRequest carries aggregated benchmark statistics for blog drafting.
type ReportRequest struct {
	SummaryStats     metrics.Summary            `json:"summaryStats" binding:"required"`
	ModelPerformance []metrics.ModelPerformance `json:"modelPerformance"`
	FileName         string                     `json:"fileName"`
}

// ReportResult is a drafted blog post. Fallback is set when the model's
// reply could not be parsed and the content is a wrapped raw transcript.
type ReportResult struct {
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Fallback bool   `json:"fallback,omitempty"`
}

// GenerateReport drafts a blog post from benchmark aggregates.
func (s *Service) GenerateReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	perf, err := json.MarshalIndent(req.ModelPerformance, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode model performance: %w", err)
	}

	prompt := fmt.Sprintf(`Generate a comprehensive blog post about ASR (Automatic Speech Recognition) benchmark results. Use the following data:

**File Name:** %s
**Summary Statistics:**
- Total Files: %d
- Average WER: %g%%
- Average Inference Time: %g seconds

**Model Performance:**
%s

Please create:
1. A compelling title
2. A brief excerpt (2-3 sentences)
3. Full blog content in HTML format with proper headings and structure

The blog should be professional, informative, and suitable for a technical audience interested in ASR benchmarks.
Include analysis of the results, comparisons between models, and insights about performance trade-offs.

Return the response in this exact JSON format:
{
    "title": "Your Title Here",
    "excerpt": "Your excerpt here",
    "content": "Your HTML content here"
}`, req.FileName, req.SummaryStats.TotalFiles, req.SummaryStats.AvgWER, req.SummaryStats.AvgInferenceTime, perf)

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("report generation failed: %w", err)
	}

	var result ReportResult
	if raw, ok := extractJSON(text); ok && json.Unmarshal(raw, &result) == nil && result.Title != "" {
		return &result, nil
	}
	return &ReportResult{
		Title:    fmt.Sprintf("ASR Benchmark Analysis: %s", req.FileName),
		Excerpt:  "Comprehensive analysis of ASR model performance showing detailed metrics and comparisons across different models and datasets.",
		Content:  fmt.Sprintf("<h2>Benchmark Analysis Results</h2><pre>%s</pre>", text),
		Fallback: true,
	}, nil
}

// AnalyzeErrorsRequest pairs a reference with a hypothesis transcription.
type AnalyzeErrorsRequest struct {
	GroundTruth   string `json:"ground_truth" binding:"required"`
	Transcription string `json:"transcription" binding:"required"`
}

// TranscriptionError is one categorized difference between the texts.
type TranscriptionError struct {
	Type                 string `json:"type"`
	GroundTruthSegment   string `json:"ground_truth_segment"`
	TranscriptionSegment string `json:"transcription_segment"`
}

// AnalysisResult carries the quality summary and categorized errors.
type AnalysisResult struct {
	Summary  string               `json:"summary"`
	Errors   []TranscriptionError `json:"errors"`
	Fallback bool                 `json:"fallback,omitempty"`
}

// AnalyzeErrors asks the model to align the texts and categorize each
// difference as a substitution, deletion or insertion.
func (s *Service) AnalyzeErrors(ctx context.Context, req AnalyzeErrorsRequest) (*AnalysisResult, error) {
	prompt := fmt.Sprintf(`Analyze the differences between these two texts and categorize the errors:

**Ground Truth:** %s
**Transcription:** %s

Please:
1. Provide a brief summary of the transcription quality
2. Identify and categorize errors as:
   - Substitution: word replaced with another word
   - Deletion: word missing from transcription
   - Insertion: extra word in transcription

Return the response in this exact JSON format:
{
    "summary": "Brief analysis of transcription quality and main issues",
    "errors": [
        {
            "type": "Substitution|Deletion|Insertion",
            "ground_truth_segment": "relevant ground truth text",
            "transcription_segment": "corresponding transcription text"
        }
    ]
}`, req.GroundTruth, req.Transcription)

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("error analysis failed: %w", err)
	}

	var result AnalysisResult
	if raw, ok := extractJSON(text); ok && json.Unmarshal(raw, &result) == nil && result.Summary != "" {
		if result.Errors == nil {
			result.Errors = []TranscriptionError{}
		}
		return &result, nil
	}
	return &AnalysisResult{
		Summary:  fmt.Sprintf("Transcription analysis completed. Response: %s", truncate(text, 200)),
		Errors:   []TranscriptionError{},
		Fallback: true,
	}, nil
}

// ModelSide is one contender in a head-to-head comparison.
type ModelSide struct {
	Name string            `json:"name" binding:"required"`
	Data []json.RawMessage `json:"data"`
}

// CompareRequest names two models and their benchmark rows.
type CompareRequest struct {
	ModelA ModelSide `json:"model_a" binding:"required"`
	ModelB ModelSide `json:"model_b" binding:"required"`
}

// ComparisonResult is the head-to-head verdict.
type ComparisonResult struct {
	Winner           string `json:"winner"`
	Summary          string `json:"summary"`
	AccuracyAnalysis string `json:"accuracyAnalysis"`
	SpeedAnalysis    string `json:"speedAnalysis"`
	TradeOffs        string `json:"tradeOffs"`
	Fallback         bool   `json:"fallback,omitempty"`
}

// Only the first entries of each side go into the prompt; full uploads can
// run to thousands of rows.
const compareSampleSize = 5

// CompareModels asks the model for a head-to-head verdict between two
// contenders.
func (s *Service) CompareModels(ctx context.Context, req CompareRequest) (*ComparisonResult, error) {
	sampleA, err := json.MarshalIndent(sample(req.ModelA.Data, compareSampleSize), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode model A data: %w", err)
	}
	sampleB, err := json.MarshalIndent(sample(req.ModelB.Data, compareSampleSize), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode model B data: %w", err)
	}

	prompt := fmt.Sprintf(`Perform a detailed head-to-head comparison between two ASR models:

**Model A: %s**
Data: %s

**Model B: %s**
Data: %s

Please analyze and provide:
1. Overall winner based on performance metrics
2. Summary of key differences
3. Detailed accuracy analysis
4. Speed/inference time analysis
5. Trade-offs between the models

Return the response in this exact JSON format:
{
    "winner": "Model name that performs better overall",
    "summary": "Brief summary of the comparison results",
    "accuracyAnalysis": "Detailed analysis of accuracy differences",
    "speedAnalysis": "Analysis of inference speed differences",
    "tradeOffs": "Discussion of trade-offs between the models"
}`, req.ModelA.Name, sampleA, req.ModelB.Name, sampleB)

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("model comparison failed: %w", err)
	}

	var result ComparisonResult
	if raw, ok := extractJSON(text); ok && json.Unmarshal(raw, &result) == nil && result.Winner != "" {
		return &result, nil
	}
	return &ComparisonResult{
		Winner:           req.ModelA.Name,
		Summary:          "Comparison analysis completed successfully.",
		AccuracyAnalysis: fmt.Sprintf("Analysis results: %s", truncate(text, 300)),
		SpeedAnalysis:    "Speed comparison analysis provided.",
		TradeOffs:        "Trade-off analysis between the models provided.",
		Fallback:         true,
	}, nil
}

// extractJSON returns the widest brace-delimited span of the text. Models
// often wrap JSON in markdown fences or prose; the span between the first
// '{' and the last '}' is the candidate payload.
func extractJSON(text string) ([]byte, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}
	return []byte(text[start : end+1]), true
}

func sample(data []json.RawMessage, n int) []json.RawMessage {
	if data == nil {
		return []json.RawMessage{}
	}
	if len(data) > n {
		return data[:n]
	}
	return data
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
