package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/export/pdf"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/notify"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

// DefaultBenchmark is compared against when no benchmark is named.
const DefaultBenchmark = "Satoshi"

// Requirements returns the requirement rows of bench. The cloud table wins when
// it has rows; otherwise the configured rows are used.
func (s *Service) Requirements(ctx context.Context, bench string) ([]gaps.Requirement, error) {
	if bench = strings.TrimSpace(bench); bench == "" {
		bench = DefaultBenchmark
	}
	if s.cloud != nil {
		rows, err := s.cloud.Requirements(ctx, bench)
		switch {
		case err != nil:
			s.logger.Warn(ctx, "remote requirements unavailable, using local rows",
				logger.String("benchmark", bench), logger.Error(err))
		case len(rows) > 0:
			return rows, nil
		}
	}
	rows := gaps.ForBenchmark(s.requirement, bench)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", benchmark.ErrUnknownBenchmark, bench)
	}
	return rows, nil
}

// Gaps compares user against bench.
func (s *Service) Gaps(ctx context.Context, user category.ScoreMap, bench string) ([]gaps.Item, error) {
	reqs, err := s.Requirements(ctx, bench)
	if err != nil {
		return nil, err
	}
	metrics.RecordGapComputed()
	return gaps.Compute(user, reqs), nil
}

// Report assembles the checklist export for the locally stored ratings.
func (s *Service) Report(ctx context.Context, name, bench string) (pdf.Report, error) {
	if bench = strings.TrimSpace(bench); bench == "" {
		bench = DefaultBenchmark
	}
	if name = strings.TrimSpace(name); name == "" {
		name = "Anonymous"
	}
	user := s.store.Get(ctx)
	items, err := s.Gaps(ctx, user, bench)
	if err != nil {
		return pdf.Report{}, err
	}
	return pdf.Report{Name: name, Score: s.Score(user), Benchmark: bench, Gaps: items, Blueprint: s.blueprint}, nil
}

// SendReport e-mails a report link.
func (s *Service) SendReport(ctx context.Context, r notify.Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if s.mailer == nil {
		return notify.ErrNotConfigured
	}
	return s.mailer.Send(ctx, r)
}
