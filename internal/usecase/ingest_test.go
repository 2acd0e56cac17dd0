package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/repository/mock"
	"github.com/Harsh-BH/datalake/internal/usecase"
)

func samplePlayers() domain.PlayerBatch {
	return domain.PlayerBatch{
		{PlayerID: 20000441, FirstName: "Stephen", LastName: "Curry", Team: "GS", Position: "PG", Experience: 15, Height: 74, Weight: 185, Salary: 55761216},
		{PlayerID: 20000452, FirstName: "LeBron", LastName: "James", Team: "LAL", Position: "SF", Experience: 21, Height: 81, Weight: 250, Salary: 48728845},
		{PlayerID: 20002169, FirstName: "Zach", LastName: "O'<Brien> & Co", Team: "", Position: "C"},
	}
}

// Test: encoding is one object per line, in order, and round-trips.
func TestEncodeLines_RoundTrip(t *testing.T) {
	batch := samplePlayers()

	data, err := usecase.EncodeLines(batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := bytes.Split(data, []byte("\n"))
	if len(lines) != len(batch) {
		t.Fatalf("expected %d lines, got %d", len(batch), len(lines))
	}
	if bytes.HasSuffix(data, []byte("\n")) {
		t.Error("expected no trailing newline")
	}
	if !bytes.Contains(lines[0], []byte(`"PlayerID":20000441`)) {
		t.Errorf("expected first line to hold the first record, got %s", lines[0])
	}

	decoded, err := usecase.DecodeLines(data)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !reflect.DeepEqual(decoded, batch) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, batch)
	}
}

// Test: encoding is deterministic.
func TestEncodeLines_Deterministic(t *testing.T) {
	a, _ := usecase.EncodeLines(samplePlayers())
	b, _ := usecase.EncodeLines(samplePlayers())
	if !bytes.Equal(a, b) {
		t.Error("expected identical output for identical input")
	}
}

// Test: an empty batch encodes to nothing.
func TestEncodeLines_Empty(t *testing.T) {
	data, err := usecase.EncodeLines(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty output, got %q", data)
	}
	decoded, err := usecase.DecodeLines(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected no records, got %d", len(decoded))
	}
}

// Test: an empty batch round-trips to an empty, non-nil batch.
func TestDecodeLines_EmptyRoundTrip(t *testing.T) {
	data, err := usecase.EncodeLines(domain.PlayerBatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := usecase.DecodeLines(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded == nil {
		t.Fatal("expected a non-nil batch")
	}
	if !reflect.DeepEqual(decoded, domain.PlayerBatch{}) {
		t.Errorf("expected empty batch, got %#v", decoded)
	}
}

// Test: a malformed line is reported with its line number.
func TestDecodeLines_Malformed(t *testing.T) {
	_, err := usecase.DecodeLines([]byte("{\"PlayerID\":1}\nnot-json"))
	if err == nil {
		t.Fatal("expected error")
	}
}

// Test: feed failure yields an empty, failed result instead of an error.
func TestIngestor_FetchFailure(t *testing.T) {
	feed := &mock.PlayerFeed{Err: errors.New("401 unauthorized")}
	ing := usecase.NewIngestor(feed, newTestStorage(mock.NewObjectStore()), zap.NewNop())

	res := ing.Fetch(context.Background())
	if res.Status != domain.FetchFailed {
		t.Errorf("expected FAILED, got %s", res.Status)
	}
	if len(res.Batch) != 0 {
		t.Errorf("expected empty batch, got %d", len(res.Batch))
	}
	if res.Err == nil {
		t.Error("expected cause to be kept")
	}
}

// Test: empty feed and successful feed.
func TestIngestor_FetchStatuses(t *testing.T) {
	feed := &mock.PlayerFeed{}
	ing := usecase.NewIngestor(feed, newTestStorage(mock.NewObjectStore()), zap.NewNop())

	if res := ing.Fetch(context.Background()); res.Status != domain.FetchEmpty {
		t.Errorf("expected EMPTY, got %s", res.Status)
	}

	feed.Batch = samplePlayers()
	res := ing.Fetch(context.Background())
	if res.Status != domain.FetchOK || len(res.Batch) != 3 {
		t.Errorf("expected OK with 3 records, got %s with %d", res.Status, len(res.Batch))
	}
}

// Test: upload writes decodable JSON lines at the key.
func TestIngestor_Upload(t *testing.T) {
	store := mock.NewObjectStore()
	store.Seed("lake", nil)
	ing := usecase.NewIngestor(&mock.PlayerFeed{}, newTestStorage(store), zap.NewNop())

	if err := ing.Upload(context.Background(), "lake", "raw-data/p.jsonl", samplePlayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, ok := store.Object("lake", "raw-data/p.jsonl")
	if !ok {
		t.Fatal("expected object to be written")
	}
	decoded, err := usecase.DecodeLines(body)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("expected 3 records, got %d", len(decoded))
	}
}

// Test: upload to a missing bucket surfaces the error.
func TestIngestor_UploadMissingBucket(t *testing.T) {
	ing := usecase.NewIngestor(&mock.PlayerFeed{}, newTestStorage(mock.NewObjectStore()), zap.NewNop())

	err := ing.Upload(context.Background(), "nope", "k", samplePlayers())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
