package core

import "log/slog"

// Observer receives progress notifications from the engine.
// Calls happen on the loading goroutine, in file and row order.
type Observer interface {
	FileStarted(fileName, table string)
	RecordSkipped(fileName string, rec SkippedRecord)
	FileFinished(result LoadResult)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) FileStarted(string, string)          {}
func (NopObserver) RecordSkipped(string, SkippedRecord) {}
func (NopObserver) FileFinished(LoadResult)             {}

// LogObserver writes notifications as structured log entries.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver returns an observer logging to logger (slog.Default when nil).
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) FileStarted(fileName, table string) {
	o.Logger.Info("started loading file", "file", fileName, "table", table)
}

func (o *LogObserver) RecordSkipped(fileName string, rec SkippedRecord) {
	o.Logger.Warn("record has constraint violation, skipped",
		"file", fileName,
		"record", rec.RecordIndex,
		"error", rec.Message,
	)
}

func (o *LogObserver) FileFinished(result LoadResult) {
	o.Logger.Info("finished loading file",
		"file", result.FileName,
		"total", result.TotalRecords,
		"inserted", result.InsertedRecords,
		"skipped", len(result.SkippedRecords),
	)
}
