package elasticsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/songsim/internal/similarity"
)

// exportBatchSize is the number of records per bulk request.
const exportBatchSize = 500

// Records converts scored pairs into index records stamped with at.
func Records(scores []similarity.PairScore, at time.Time) []ScoreRecord {
	records := make([]ScoreRecord, len(scores))
	for i, s := range scores {
		records[i] = ScoreRecord{
			ID:         RecordID(s.A.ID(), s.B.ID()),
			DocumentA:  s.A.ID(),
			DocumentB:  s.B.ID(),
			TitleA:     s.A.Name(),
			TitleB:     s.B.Name(),
			SourceA:    s.A.SourceID(),
			SourceB:    s.B.SourceID(),
			Score:      s.Score,
			ComputedAt: at,
		}
	}
	return records
}

// Export writes scores to the index in batches, creating the index first.
func (c *Client) Export(ctx context.Context, scores []similarity.PairScore) (int, error) {
	if err := c.CreateIndex(ctx); err != nil {
		return 0, err
	}

	records := Records(scores, time.Now().UTC())
	exported := 0
	for start := 0; start < len(records); start += exportBatchSize {
		end := min(start+exportBatchSize, len(records))
		n, err := c.IndexScores(ctx, records[start:end])
		exported += n
		if err != nil {
			return exported, fmt.Errorf("failed to export scores: %w", err)
		}
		slog.Debug("exported score batch", "index", c.index, "records", n)
	}

	if err := c.Refresh(ctx); err != nil {
		slog.Warn("failed to refresh index", "index", c.index, "error", err)
	}
	slog.Info("scores exported", "index", c.index, "records", exported)
	return exported, nil
}
