package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/storekeep/storekeep/internal/importer"
)

const (
	// QueueDefault is the queue background imports run on.
	QueueDefault = "default"
	// TaskTypeImportProducts runs a product CSV through the import pipeline.
	TaskTypeImportProducts = "import:products"
)

// ImportProductsPayload carries one uploaded file to the worker.
type ImportProductsPayload struct {
	JobID string `json:"job_id"`
	HubID int64  `json:"hub_id"`
	CSV   []byte `json:"csv"`
}

// NewImportProductsTask constructs the task and returns the job id handed
// back to the uploader.
func NewImportProductsTask(hubID int64, csvData []byte) (*asynq.Task, string, error) {
	jobID := uuid.NewString()
	data, err := json.Marshal(ImportProductsPayload{JobID: jobID, HubID: hubID, CSV: csvData})
	if err != nil {
		return nil, "", err
	}
	return asynq.NewTask(TaskTypeImportProducts, data, asynq.Queue(QueueDefault)), jobID, nil
}

// NewImportProductsHandler processes TaskTypeImportProducts tasks. Import
// errors are terminal (re-running the same file fails the same way), so the
// handler logs and skips retry rather than requeueing.
func NewImportProductsHandler(logger *slog.Logger, svc *importer.Service) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ImportProductsPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		created, err := svc.ImportProducts(ctx, payload.HubID, payload.CSV)
		if err != nil {
			logger.Error("product import failed",
				slog.String("job_id", payload.JobID),
				slog.Int64("hub_id", payload.HubID),
				slog.Int("created", created),
				slog.Any("error", err))
			return asynq.SkipRetry
		}
		logger.Info("product import finished",
			slog.String("job_id", payload.JobID),
			slog.Int64("hub_id", payload.HubID),
			slog.Int("created", created))
		return nil
	}
}
