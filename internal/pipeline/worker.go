package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/texstruct/internal/config"
	"github.com/dgallion1/texstruct/internal/structure"
)

// Worker processes a single outline construction job.
type Worker struct {
	builder  *structure.Builder
	log      *slog.Logger
	settings config.StructureSettings
}

func NewWorker(builder *structure.Builder, log *slog.Logger, settings config.StructureSettings) *Worker {
	return &Worker{
		builder:  builder,
		log:      log,
		settings: settings,
	}
}

// Process runs one construction for a job. Per-file source failures inside
// the builder are non-fatal; only a hard error fails the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "root", job.RootPath)

	job.SetStatus(StatusBuilding)

	cfg := w.settings.StructureConfig()
	cfg.MergeSubFiles = job.MergeSubFiles

	outline, err := w.builder.Construct(ctx, job.RootPath, cfg)
	if err != nil {
		log.Error("outline construction failed", "error", err)
		job.AddError(fmt.Sprintf("construct: %s", err))
		job.SetStatus(StatusFailed)
		return
	}

	job.SetOutline(outline)
	job.SetStatus(StatusCompleted)
	log.Info("outline built", "elements", countElements(outline))
}

func countElements(elems []*structure.Element) int {
	n := len(elems)
	for _, el := range elems {
		n += countElements(el.Children)
	}
	return n
}
