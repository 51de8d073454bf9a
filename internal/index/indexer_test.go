// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/kosmos/synesis/pkg/types"
)

// wordEmbedder is a deterministic bag-of-words embedder: each lowercased
// word hashes into one of 64 buckets. Texts sharing words get similar
// vectors, which is enough to exercise ranking without a remote service.
type wordEmbedder struct{}

func (wordEmbedder) Name() string { return "word" }

func (wordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, 64)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?")
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%64]++
	}
	return vec, nil
}

// failingEmbedder always errors.
type failingEmbedder struct{}

func (failingEmbedder) Name() string { return "failing" }

func (failingEmbedder) Embed(context.Context, string) ([]float64, error) {
	return nil, fmt.Errorf("embedder down")
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(types.IndexConfig{EmbeddingsDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIndexPaperLengthMismatchFailsFast(t *testing.T) {
	ix := NewIndexer(newTestStore(t), wordEmbedder{})

	_, err := ix.IndexPaper(context.Background(), "p1",
		[]string{"one", "two"}, []map[string]string{{"paper_id": "p1"}})
	if err == nil {
		t.Fatal("length mismatch accepted")
	}
}

func TestIndexPaperEmptyChunksIsNoOp(t *testing.T) {
	ix := NewIndexer(newTestStore(t), wordEmbedder{})

	n, err := ix.IndexPaper(context.Background(), "p1", nil, nil)
	if err != nil {
		t.Fatalf("IndexPaper() error = %v", err)
	}
	if n != 0 {
		t.Errorf("indexed %d chunks, want 0", n)
	}
}

func TestIndexPaperIdempotent(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndexer(store, wordEmbedder{})
	r := NewRetriever(store, wordEmbedder{})
	ctx := context.Background()

	chunks := []string{"alpha text", "beta text"}
	metas := []map[string]string{
		{"paper_id": "p1", "title": "T"},
		{"paper_id": "p1", "title": "T"},
	}

	for i := 0; i < 2; i++ {
		n, err := ix.IndexPaper(ctx, "p1", chunks, metas)
		if err != nil {
			t.Fatalf("IndexPaper() run %d error = %v", i, err)
		}
		if n != 2 {
			t.Fatalf("IndexPaper() run %d indexed %d, want 2", i, n)
		}
	}

	res, err := r.Retrieve(ctx, "alpha beta text", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Chunks) != 2 {
		t.Fatalf("store holds %d chunks after double index, want 2", len(res.Chunks))
	}
	ids := map[string]bool{}
	for _, sc := range res.Chunks {
		ids[sc.Chunk.ID] = true
	}
	if !ids["p1_0"] || !ids["p1_1"] {
		t.Errorf("chunk ids = %v, want p1_0 and p1_1", ids)
	}
}

func TestReindexWithFewerChunksLeavesNoOrphans(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndexer(store, wordEmbedder{})
	r := NewRetriever(store, wordEmbedder{})
	ctx := context.Background()

	meta := map[string]string{"paper_id": "p1", "title": "T"}
	if _, err := ix.IndexPaper(ctx, "p1",
		[]string{"one", "two", "three"},
		[]map[string]string{meta, meta, meta}); err != nil {
		t.Fatal(err)
	}
	if _, err := ix.IndexPaper(ctx, "p1",
		[]string{"one"}, []map[string]string{meta}); err != nil {
		t.Fatal(err)
	}

	res, err := r.Retrieve(ctx, "one two three", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Chunks) != 1 {
		t.Fatalf("store holds %d chunks after shrinking re-index, want 1", len(res.Chunks))
	}
	if res.Chunks[0].Chunk.ID != "p1_0" {
		t.Errorf("surviving chunk = %s, want p1_0", res.Chunks[0].Chunk.ID)
	}
}

func TestRoundTripMetadata(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndexer(store, wordEmbedder{})
	r := NewRetriever(store, wordEmbedder{})
	ctx := context.Background()

	meta := map[string]string{"paper_id": "2301.00001", "title": "Attention Is All You Need"}
	if _, err := ix.IndexPaper(ctx, "2301.00001",
		[]string{"transformers use attention"}, []map[string]string{meta}); err != nil {
		t.Fatal(err)
	}

	res, err := r.Retrieve(ctx, "attention", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Chunks) != 1 {
		t.Fatalf("len(Chunks) = %d, want 1", len(res.Chunks))
	}
	got := res.Chunks[0].Chunk.Metadata
	if got["paper_id"] != "2301.00001" || got["title"] != "Attention Is All You Need" {
		t.Errorf("metadata round trip = %v", got)
	}
	if len(got) != 2 {
		t.Errorf("metadata has %d keys, want exactly 2: %v", len(got), got)
	}
}

func TestRetrieveScenarioWhatIsB(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndexer(store, wordEmbedder{})
	r := NewRetriever(store, wordEmbedder{})
	ctx := context.Background()

	indexed := []string{"A is B", "B is C"}
	meta := map[string]string{"paper_id": "p1", "title": "T"}
	if _, err := ix.IndexPaper(ctx, "p1", indexed, []map[string]string{meta, meta}); err != nil {
		t.Fatal(err)
	}

	res, err := r.Retrieve(ctx, "What is B?", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Chunks) != 1 {
		t.Fatalf("len(Chunks) = %d, want exactly 1", len(res.Chunks))
	}
	text := res.Chunks[0].Chunk.Text
	if text != indexed[0] && text != indexed[1] {
		t.Errorf("retrieved %q, want one of %v", text, indexed)
	}
}

func TestRetrieveLimitAndOrdering(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndexer(store, wordEmbedder{})
	r := NewRetriever(store, wordEmbedder{})
	ctx := context.Background()

	meta := map[string]string{"paper_id": "p1", "title": "T"}
	texts := []string{
		"quantum entanglement experiments",
		"quantum computing hardware",
		"classical music history",
		"gardening tips for spring",
	}
	metas := []map[string]string{meta, meta, meta, meta}
	if _, err := ix.IndexPaper(ctx, "p1", texts, metas); err != nil {
		t.Fatal(err)
	}

	res, err := r.Retrieve(ctx, "quantum computing", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Chunks) > 3 {
		t.Fatalf("len(Chunks) = %d, want <= 3", len(res.Chunks))
	}
	for i := 1; i < len(res.Chunks); i++ {
		if res.Chunks[i].Score > res.Chunks[i-1].Score {
			t.Errorf("chunks not in descending score order: %f before %f",
				res.Chunks[i-1].Score, res.Chunks[i].Score)
		}
	}
	if res.Chunks[0].Chunk.Text != "quantum computing hardware" {
		t.Errorf("top chunk = %q, want the quantum computing one", res.Chunks[0].Chunk.Text)
	}
}

func TestRetrieveEmptyIndexReturnsNoChunksWithoutError(t *testing.T) {
	store := newTestStore(t)
	r := NewRetriever(store, wordEmbedder{})

	res, err := r.Retrieve(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Retrieve() on empty index error = %v", err)
	}
	if len(res.Chunks) != 0 {
		t.Errorf("empty index returned %d chunks", len(res.Chunks))
	}
	if res.Query != "anything" {
		t.Errorf("Query = %q", res.Query)
	}
}

func TestRetrieveEmbedderFailureIsError(t *testing.T) {
	store := newTestStore(t)
	r := NewRetriever(store, failingEmbedder{})

	if _, err := r.Retrieve(context.Background(), "q", 5); err == nil {
		t.Fatal("embedder failure did not surface as error")
	}
}

func TestIndexPaperEmbedderFailureLeavesStoreUnchanged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta := map[string]string{"paper_id": "p1", "title": "T"}
	good := NewIndexer(store, wordEmbedder{})
	if _, err := good.IndexPaper(ctx, "p1", []string{"original"}, []map[string]string{meta}); err != nil {
		t.Fatal(err)
	}

	bad := NewIndexer(store, failingEmbedder{})
	if _, err := bad.IndexPaper(ctx, "p1", []string{"replacement"}, []map[string]string{meta}); err == nil {
		t.Fatal("embedding failure did not surface as error")
	}

	res, err := NewRetriever(store, wordEmbedder{}).Retrieve(ctx, "original", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Chunks) != 1 || res.Chunks[0].Chunk.Text != "original" {
		t.Errorf("failed indexing mutated the store: %+v", res.Chunks)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2}, []float64{1, 2}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosine(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosine() = %f, want %f", got, tt.want)
			}
		})
	}
}
