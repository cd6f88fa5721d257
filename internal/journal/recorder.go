package journal

import (
	"context"
	"time"

	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/logging"
	"github.com/tormodhaugland/wsb/internal/model"
)

// Recorder is a client.Builder that journals every request it forwards.
// Journal failures are logged and never block the build.
type Recorder struct {
	Builder client.Builder
	DB      *DB
	Now     func() time.Time
}

func NewRecorder(b client.Builder, db *DB) *Recorder {
	return &Recorder{Builder: b, DB: db, Now: time.Now}
}

func (r *Recorder) StartBuild(ctx context.Context, ws model.Workspace, params []model.WorkspaceBuildParameter) (model.WorkspaceBuild, error) {
	log := logging.FromContext(ctx).With("workspace", ws.FullName())

	id, jerr := r.DB.RecordSubmission(ctx, ws, params, r.Now())
	if jerr != nil {
		log.Warn("journal submission failed", "error", jerr)
	}

	build, err := r.Builder.StartBuild(ctx, ws, params)
	if err != nil {
		log.Error("build request failed", "error", err)
	} else {
		log.Info("build started", "build", build.ID, "build_number", build.BuildNumber)
	}

	if jerr == nil {
		if rerr := r.DB.RecordResult(ctx, id, build, err, r.Now()); rerr != nil {
			log.Warn("journal result failed", "error", rerr)
		}
	}
	return build, err
}
