package usecases

import (
	"context"
	"net/url"
	"strconv"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const _defaultMaxSaturatedRepeats = 10

// BulkRequest describes one listing endpoint driven across filter values.
type BulkRequest struct {
	Name   string
	Path   string
	Params url.Values
	// FilterParam receives each value of Filters in turn. With no filters
	// the endpoint is called once without it.
	FilterParam string
	Filters     []string
	Paginated   bool
	// PageParam defaults to "page".
	PageParam string
	// PageSize and RepeatIfSaturated handle non paginated endpoints that
	// silently truncate their answer at PageSize rows.
	PageSize            int
	RepeatIfSaturated   bool
	MaxSaturatedRepeats int
}

// RowHandler receives every row of every page. A failing row is logged and
// counted; the run goes on.
type RowHandler func(ctx context.Context, filter string, row any) error

type BulkReport struct {
	Filters   int
	Pages     int
	Rows      int
	RowErrors int
	// Skipped holds the filter values abandoned on unretryable answers.
	Skipped []string
	Aborted bool
	Err     error
}

// Synchronizer drives a bulk listing endpoint with the same classify, retry
// and paginate protocol used by jobs.
type Synchronizer struct {
	requester *requester
	logger    logger.Logger
}

func (s *Synchronizer) Run(ctx context.Context, req BulkRequest, handle RowHandler, progress ProgressReporter) BulkReport {
	ctx, span := otel.Tracer("fleet-sync-server").Start(ctx, "bulk_sync."+req.Name)
	defer span.End()

	filters := req.Filters
	if len(filters) == 0 {
		filters = []string{""}
	}
	if req.PageParam == "" {
		req.PageParam = communication.ParamPage
	}
	if req.MaxSaturatedRepeats <= 0 {
		req.MaxSaturatedRepeats = _defaultMaxSaturatedRepeats
	}

	tracker := newProgressTracker(progress, float64(len(filters)))
	report := BulkReport{}

	for index, filter := range filters {
		if ctx.Err() != nil {
			report.Aborted = true
			report.Err = ctx.Err()
			break
		}

		report.Filters++
		outcome, err := s.runFilter(ctx, req, index, filter, handle, tracker, &report)
		tracker.report(float64(index+1), s.label(req, filter))

		if outcome == communication.OutcomeGoNext {
			s.logger.Warnw("skipping filter value", "sync", req.Name, "filter", filter, "reason", err)
			report.Skipped = append(report.Skipped, filter)
			continue
		}
		if outcome == communication.OutcomeAbort {
			s.logger.Errorw("bulk sync aborted", "sync", req.Name, "filter", filter, "error", err, "transport", isTransportError(err))
			report.Aborted = true
			report.Err = err
			break
		}
	}

	span.SetAttributes(
		attribute.Int("pages", report.Pages),
		attribute.Int("rows", report.Rows),
		attribute.Bool("aborted", report.Aborted),
	)
	s.logger.Infow("bulk sync finished",
		"sync", req.Name,
		"filters", report.Filters,
		"pages", report.Pages,
		"rows", report.Rows,
		"row_errors", report.RowErrors,
		"skipped", len(report.Skipped))

	return report
}

// runFilter fetches every page for one filter value and returns the
// outcome that ended it: OutcomeProcess when all pages were consumed.
func (s *Synchronizer) runFilter(
	ctx context.Context,
	req BulkRequest,
	index int,
	filter string,
	handle RowHandler,
	tracker *progressTracker,
	report *BulkReport,
) (communication.Outcome, error) {
	label := s.label(req, filter)
	page := 1
	perPage, lastPage, total := 0, 0, 0
	consumed := 0
	saturatedRepeats := 0

	for {
		params := s.params(req, filter, page)
		result := s.requester.Do(ctx, req.Path, params)
		if result.Outcome != communication.OutcomeProcess {
			return result.Outcome, result.Err
		}
		report.Pages++

		var rows []any
		if req.Paginated {
			bulk, err := communication.BulkPageFromData(result.Envelope.Data)
			if err != nil {
				return communication.OutcomeAbort, err
			}
			if page == 1 {
				perPage, lastPage, total = bulk.PerPage, bulk.LastPage, bulk.Total
			}
			rows = bulk.Rows
		} else {
			var err error
			rows, err = communication.RowsFromData(result.Envelope.Data)
			if err != nil {
				return communication.OutcomeAbort, err
			}
		}

		for i, row := range rows {
			report.Rows++
			if err := handle(ctx, filter, row); err != nil {
				report.RowErrors++
				s.logger.Warnw("row handler failed", "sync", req.Name, "filter", filter, "error", err)
			}

			var fraction float64
			if req.Paginated {
				// page-local offset plus the pages already consumed
				if total > 0 {
					fraction = float64((page-1)*perPage+i+1) / float64(total)
				}
			} else if len(rows) > 0 {
				fraction = float64(consumed+i+1) / float64(consumed+len(rows))
			}
			if fraction > 1 {
				fraction = 1
			}
			tracker.reportRow(float64(index)+fraction, label, row)
		}
		consumed += len(rows)

		if req.Paginated {
			if page < lastPage {
				page++
				continue
			}
			return communication.OutcomeProcess, nil
		}

		if req.RepeatIfSaturated && req.PageSize > 0 && len(rows) == req.PageSize {
			saturatedRepeats++
			if saturatedRepeats <= req.MaxSaturatedRepeats {
				s.logger.Debugw("saturated answer, repeating request", "sync", req.Name, "filter", filter, "rows", len(rows))
				continue
			}
			s.logger.Warnw("saturated answer repeated too often", "sync", req.Name, "filter", filter)
		}
		return communication.OutcomeProcess, nil
	}
}

func (s *Synchronizer) params(req BulkRequest, filter string, page int) url.Values {
	params := url.Values{}
	for name, values := range req.Params {
		params[name] = append([]string(nil), values...)
	}
	if req.FilterParam != "" && filter != "" {
		params.Set(req.FilterParam, filter)
	}
	if req.Paginated {
		params.Set(req.PageParam, strconv.Itoa(page))
	}
	return params
}

func (s *Synchronizer) label(req BulkRequest, filter string) string {
	if filter == "" {
		return req.Name
	}
	return req.Name + ": " + filter
}
