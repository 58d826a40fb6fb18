package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bala2207022/face-attendance/internal/embedding"
	"github.com/bala2207022/face-attendance/internal/matcher"
	"github.com/bala2207022/face-attendance/internal/models"
	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
)

type templateReader interface {
	All() (map[string][]float64, error)
}

// Recognition is the result of resolving one probe image against the
// stored templates. Outcome is empty when a template matched.
type Recognition struct {
	Outcome    models.Outcome
	Label      string
	Similarity float64
}

// Matched reports whether the probe resolved to a template.
func (r Recognition) Matched() bool {
	return r.Outcome == ""
}

// RecognitionService turns probe images into labels by running the
// embedding extractor and nearest-template matcher in sequence.
type RecognitionService struct {
	templates templateReader
	extractor embedding.Extractor
	threshold float64
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewRecognitionService constructs the recognition pipeline.
func NewRecognitionService(templates templateReader, extractor embedding.Extractor, threshold float64, metrics *MetricsService, logger *zap.Logger) *RecognitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecognitionService{
		templates: templates,
		extractor: extractor,
		threshold: threshold,
		metrics:   metrics,
		logger:    logger,
	}
}

// Recognize resolves a probe image. Missing faces, an empty template
// store and sub-threshold similarity are outcomes, not errors; errors
// are reserved for extractor and store failures.
func (s *RecognitionService) Recognize(ctx context.Context, image []byte) (Recognition, error) {
	extractStart := time.Now()
	probe, err := s.extractor.Extract(ctx, image)
	s.metrics.ObserveExtraction(s.extractor.Name(), time.Since(extractStart))
	if err != nil {
		if errors.Is(err, embedding.ErrNoFaceDetected) {
			s.metrics.RecordRecognition(models.OutcomeNoFace)
			return Recognition{Outcome: models.OutcomeNoFace}, nil
		}
		return Recognition{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "embedding extraction failed")
	}

	templates, err := s.templates.All()
	if err != nil {
		return Recognition{}, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load templates")
	}

	matchStart := time.Now()
	match, err := matcher.Best(probe, templates)
	s.metrics.ObserveMatch(time.Since(matchStart))
	if err != nil {
		if errors.Is(err, matcher.ErrNoTemplates) {
			s.metrics.RecordRecognition(models.OutcomeNotTrained)
			return Recognition{Outcome: models.OutcomeNotTrained}, nil
		}
		return Recognition{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "template matching failed")
	}

	if match.Similarity < s.threshold {
		s.logger.Debug("probe below threshold",
			zap.String("nearest", match.Label),
			zap.Float64("similarity", match.Similarity),
			zap.Float64("threshold", s.threshold))
		s.metrics.RecordRecognition(models.OutcomeNotRecognized)
		return Recognition{Outcome: models.OutcomeNotRecognized, Similarity: match.Similarity}, nil
	}

	s.metrics.RecordRecognition("")
	return Recognition{Label: match.Label, Similarity: match.Similarity}, nil
}
