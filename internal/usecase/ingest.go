package usecase

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/metrics"
	"github.com/Harsh-BH/datalake/internal/repository"
)

// Ingestor moves player records from the feed into object storage.
type Ingestor struct {
	feed    repository.PlayerFeed
	storage *StorageProvisioner
	logger  *zap.Logger
}

// NewIngestor creates a new Ingestor.
func NewIngestor(feed repository.PlayerFeed, storage *StorageProvisioner, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		feed:    feed,
		storage: storage,
		logger:  logger,
	}
}

// Fetch calls the feed once. Failures are logged and reported as FetchFailed with
// an empty batch; callers treat that as nothing to ingest.
func (i *Ingestor) Fetch(ctx context.Context) domain.FetchResult {
	batch, err := i.feed.FetchPlayers(ctx)
	if err != nil {
		i.logger.Error("Failed to fetch player data", zap.Error(err))
		return domain.FetchResult{Status: domain.FetchFailed, Err: err}
	}
	if len(batch) == 0 {
		i.logger.Warn("Player feed returned no records")
		return domain.FetchResult{Status: domain.FetchEmpty}
	}
	i.logger.Info("Fetched player data", zap.Int("records", len(batch)))
	return domain.FetchResult{Status: domain.FetchOK, Batch: batch}
}

// EncodeLines serializes batch as JSON lines in batch order, one object per
// line, with no trailing newline.
func EncodeLines(batch domain.PlayerBatch) ([]byte, error) {
	var buf bytes.Buffer
	for n, p := range batch {
		line, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("usecase: encode record %d: %w", n, err)
		}
		if n > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}

// DecodeLines parses JSON lines produced by EncodeLines. Blank lines are ignored.
func DecodeLines(data []byte) (domain.PlayerBatch, error) {
	batch := domain.PlayerBatch{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var p domain.Player
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("usecase: decode line %d: %w", lineNo, err)
		}
		batch = append(batch, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("usecase: scan lines: %w", err)
	}
	return batch, nil
}

// Upload encodes batch and writes it at key, overwriting prior content.
func (i *Ingestor) Upload(ctx context.Context, bucket, key string, batch domain.PlayerBatch) error {
	payload, err := EncodeLines(batch)
	if err != nil {
		return err
	}
	if err := i.storage.Put(ctx, bucket, key, payload); err != nil {
		i.logger.Error("Failed to upload player data",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}
	metrics.RecordsIngested.Add(float64(len(batch)))
	return nil
}
