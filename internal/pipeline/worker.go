package pipeline

import (
	"context"
	"log/slog"
)

// Worker parses the documents of batch jobs.
type Worker struct {
	svc *Service
	log *slog.Logger
}

func NewWorker(svc *Service, log *slog.Logger) *Worker {
	return &Worker{svc: svc, log: log}
}

// Process parses one job's upload and stores the result on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	data := job.FileData()
	if data == nil {
		// Already processed.
		return
	}

	job.SetStatus(StatusParsing, "parsing")
	doc, err := w.svc.Parse(ctx, data, Request{
		Filename: job.Filename,
		Title:    job.Title,
		DocType:  job.DocType,
		Chunks:   job.Chunks,
	})
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", err)
		return
	}

	if doc.NodeCount() == 0 {
		log.Warn("no structure recovered", "profile", doc.Info.Profile)
	}
	job.Complete(doc)
	log.Info("job completed",
		"profile", doc.Info.Profile,
		"nodes", doc.NodeCount(),
		"attachments", len(doc.Result.Attachments),
		"chunks", len(doc.Chunks),
	)
}
