package services

import (
	"context"
	"sync"

	"resale-explorer/models"
	"resale-explorer/storage"
	"resale-explorer/utils"
)

// Loader reads a RecordSource once and keeps the normalized table for the
// life of the process.
type Loader struct {
	source     storage.RecordSource
	normalizer *Normalizer
	logger     *utils.Logger

	once   sync.Once
	table  *models.Table
	report *models.LoadReport
	err    error
}

func NewLoader(source storage.RecordSource, normalizer *Normalizer, logger *utils.Logger) *Loader {
	return &Loader{source: source, normalizer: normalizer, logger: logger}
}

// Load returns the canonical table. The source is only read on the first
// call; later calls return the same table, report and error.
func (l *Loader) Load(ctx context.Context) (*models.Table, *models.LoadReport, error) {
	l.once.Do(func() {
		l.table, l.report, l.err = l.load(ctx)
	})
	return l.table, l.report, l.err
}

func (l *Loader) load(ctx context.Context) (*models.Table, *models.LoadReport, error) {
	name := l.source.Name()
	l.logger.Info("[loader] Reading dataset from %s", name)

	raw, err := l.source.Read(ctx)
	if err != nil {
		return nil, nil, &LoadError{Source: name, Err: err}
	}
	l.logger.Debug("[loader] Read %d raw rows", len(raw))

	table, report, err := l.normalizer.Normalize(name, raw)
	if err != nil {
		return nil, report, err
	}
	l.logger.Info("[loader] Dataset ready: %d transactions", table.Len())
	return table, report, nil
}
