package benchmarks

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"asr-benchmark-hub/backend/internal/auth"
	"asr-benchmark-hub/backend/internal/datastore"
	"asr-benchmark-hub/backend/internal/ingest"
	"asr-benchmark-hub/backend/internal/metrics"
)

type fakeStore struct {
	mu        sync.Mutex
	batches   [][]ingest.BenchmarkRow
	creators  []string
	entries   []*datastore.BenchmarkEntry
	insertErr error
}

func (f *fakeStore) InsertBatch(_ context.Context, rows []ingest.BenchmarkRow, createdBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.batches = append(f.batches, rows)
	f.creators = append(f.creators, createdBy)
	return nil
}

func (f *fakeStore) List(_ context.Context, limit, offset int) ([]*datastore.BenchmarkEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.entries
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries), nil
}

type fakeArchiver struct {
	mu    sync.Mutex
	names []string
}

func (f *fakeArchiver) Archive(_ context.Context, originalFilename, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, originalFilename)
	return "archived-" + originalFilename, nil
}

type fakeAppender struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAppender) Append(_ context.Context, e *datastore.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, e.Action)
	return nil
}

type fixture struct {
	store    *fakeStore
	archiver *fakeArchiver
	audits   *fakeAppender
	router   *gin.Engine
}

func newFixture(t *testing.T, actor *datastore.User) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &fakeStore{}
	archiver := &fakeArchiver{}
	audits := &fakeAppender{}
	h := NewHandler(store, archiver, auth.NewAuditor(audits, zap.NewNop()), zap.NewNop())

	r := gin.New()
	if actor != nil {
		r.Use(func(c *gin.Context) {
			c.Set("authenticatedUser", actor)
			c.Next()
		})
	}
	r.POST("/api/benchmarks/upload", h.Upload)
	r.GET("/api/benchmarks/dashboard", h.Dashboard)

	return &fixture{store: store, archiver: archiver, audits: audits, router: r}
}

func multipartFile(t *testing.T, filename string, contents []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(contents)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (f *fixture) upload(t *testing.T, filename string, contents []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartFile(t, filename, contents)
	req := httptest.NewRequest(http.MethodPost, "/api/benchmarks/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

const validCSV = `Audio File Name,duration,Model,Ground_truth,Transcription,wer,latency
a.wav,06:44:00,whisper,hello there,hello their,0.5,1.2
b.wav,"1 day, 0:03:22",wav2vec,good morning,good morning,0,0.8
`

func TestUpload_ProcessesCSV(t *testing.T) {
	f := newFixture(t, nil)

	w := f.upload(t, "results.csv", []byte(validCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Successfully processed 2 rows from results.csv", resp.Message)

	// Aliased columns landed in the canonical fields.
	assert.Equal(t, 24240.0, resp.Data[0].AudioLengthSeconds)
	assert.Equal(t, 86602.0, resp.Data[1].AudioLengthSeconds)
	assert.Equal(t, 0.5, resp.Data[0].WERScore)

	require.Len(t, f.store.batches, 1)
	assert.Equal(t, datastore.AnonymousCreator, f.store.creators[0])
	assert.Equal(t, []string{"results.csv"}, f.archiver.names)
	assert.Contains(t, f.audits.actions, "benchmark_uploaded")
}

func TestUpload_AttributesToSignedInUser(t *testing.T) {
	f := newFixture(t, &datastore.User{ID: "u-7", Username: "carol", Role: datastore.RoleEditor, Status: datastore.StatusActive})

	w := f.upload(t, "results.csv", []byte(validCSV))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.store.creators, 1)
	assert.Equal(t, "u-7", f.store.creators[0])
}

func TestUpload_RejectsUnknownExtension(t *testing.T) {
	f := newFixture(t, nil)

	w := f.upload(t, "results.pdf", []byte("not a spreadsheet"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be a spreadsheet")
	assert.Empty(t, f.store.batches)
}

func TestUpload_MissingFile(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/benchmarks/upload", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=empty")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_BadRowCitesPhysicalRowNumber(t *testing.T) {
	f := newFixture(t, nil)

	csv := "Audio File Name,Audio Length,Model,Ground_truth,Transcription,WER Score,Inference time (in sec)\n" +
		"a.wav,10,whisper,x,x,0.1,1\n" +
		"b.wav,banana,whisper,y,y,0.2,1\n"
	w := f.upload(t, "bad.csv", []byte(csv))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	// Header is row 1, so the second data row is physical row 3.
	assert.Contains(t, w.Body.String(), "row 3")
	assert.Contains(t, w.Body.String(), "banana")
	assert.Empty(t, f.store.batches)
}

func TestUpload_EmptyFile(t *testing.T) {
	f := newFixture(t, nil)

	csv := "Audio File Name,Audio Length,Model,Ground_truth,Transcription,WER Score,Inference time (in sec)\n"
	w := f.upload(t, "empty.csv", []byte(csv))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no usable data")
}

func TestUpload_PersistenceFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.store.insertErr = context.DeadlineExceeded

	w := f.upload(t, "results.csv", []byte(validCSV))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpload_ArchiverIsOptional(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeStore{}
	audits := &fakeAppender{}
	h := NewHandler(store, nil, auth.NewAuditor(audits, zap.NewNop()), zap.NewNop())

	r := gin.New()
	r.POST("/api/benchmarks/upload", h.Upload)
	f := &fixture{store: store, audits: audits, router: r}

	w := f.upload(t, "results.csv", []byte(validCSV))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, nil)
	f.store.entries = []*datastore.BenchmarkEntry{
		{Model: "whisper", WERScore: 0.1, InferenceTime: 1.0},
		{Model: "whisper", WERScore: 0.3, InferenceTime: 2.0},
		{Model: "wav2vec", WERScore: 0.4, InferenceTime: 0.5},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/benchmarks/dashboard", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Entries, 3)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, metrics.Summary{TotalFiles: 3, AvgWER: 0.2667, AvgInferenceTime: 1.1667}, resp.Summary)
	require.Len(t, resp.ModelPerformance, 2)
	assert.Equal(t, "wav2vec", resp.ModelPerformance[0].Model)
}
