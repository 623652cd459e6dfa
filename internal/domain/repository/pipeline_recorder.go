package repository

import (
	"time"

	"github.com/yourusername/price-monitor/internal/domain/entity"
)

// PipelineRecorder observes finished pipeline runs (metrics)
type PipelineRecorder interface {
	ObserveRun(report *entity.Report, elapsed time.Duration)
}
