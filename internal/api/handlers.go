package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/syncstat/internal/aggregate"
	"github.com/good-yellow-bee/syncstat/internal/batch"
	"github.com/good-yellow-bee/syncstat/internal/metrics"
	"github.com/good-yellow-bee/syncstat/internal/modelname"
	"github.com/good-yellow-bee/syncstat/internal/models"
	"github.com/good-yellow-bee/syncstat/internal/zone"
)

// viewRequest carries everything a view needs to compute its response.
type viewRequest struct {
	r       *http.Request
	dataset *batch.Dataset
	records []models.Record // after date range and selection
	opts    batch.AnalyzeOptions
}

type viewFunc func(v *viewRequest) (any, *Error)

// view wraps a view function with snapshot lookup, query parsing and
// aggregation timing.
func (s *Server) view(name string, fn viewFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := s.store.Current()
		if err != nil {
			JSONError(w, ErrNotReady)
			return
		}

		opts, apiErr := s.parseOptions(r)
		if apiErr != nil {
			JSONError(w, apiErr)
			return
		}

		start := time.Now()
		filtered, failed := opts.Filter(ds.Records)
		data, apiErr := fn(&viewRequest{r: r, dataset: ds, records: filtered, opts: opts})
		metrics.AggregationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if apiErr != nil {
			JSONError(w, apiErr)
			return
		}

		meta := &Meta{
			DatasetID: ds.ID,
			LoadedAt:  ds.LoadedAt,
			Records:   ds.Len(),
			Filtered:  len(filtered),
			From:      nonZero(opts.From),
			To:        nonZero(opts.To),
		}
		if failed > 0 {
			meta.Warnings = append(meta.Warnings, fmt.Sprintf("where expression failed on %d records", failed))
		}

		JSONWithMeta(w, data, meta)
	}
}

// parseOptions reads the common query parameters:
// from, to (YYYY-MM-DD or RFC3339), server, model, where and sort.
func (s *Server) parseOptions(r *http.Request) (batch.AnalyzeOptions, *Error) {
	q := r.URL.Query()
	var opts batch.AnalyzeOptions

	from, err := batch.ParseDateFlag(q.Get("from"))
	if err != nil {
		return opts, NewBadRequest(fmt.Sprintf("invalid from: %v", err))
	}
	to, err := batch.ParseDateFlagEndOfDay(q.Get("to"))
	if err != nil {
		return opts, NewBadRequest(fmt.Sprintf("invalid to: %v", err))
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return opts, NewBadRequest("from must not be after to")
	}
	opts.From, opts.To = from, to

	where := q.Get("where")
	if len(where) > s.config.MaxWhereLength {
		return opts, NewValidationError(fmt.Sprintf("where expression exceeds %d characters", s.config.MaxWhereLength))
	}
	sel, err := batch.NewSelection(q.Get("server"), q.Get("model"), where)
	if err != nil {
		return opts, NewValidationError(fmt.Sprintf("invalid where expression: %v", err))
	}
	opts.Selection = sel

	if v := q.Get("sort"); v != "" {
		sort, ok := aggregate.ParseProjectSort(v)
		if !ok {
			return opts, NewBadRequest(fmt.Sprintf("invalid sort %q (use syncs or users)", v))
		}
		opts.ProjectSort = sort
	}

	return opts, nil
}

func nonZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func summaryView(v *viewRequest) (any, *Error) {
	sum := aggregate.Summarize(v.dataset.Records, v.records)

	resp := SummaryResponse{
		Summary:       sum,
		ServersByZone: make(map[string]int),
	}
	if sum.TotalRecords > 0 {
		resp.ValidDatePercent = float64(sum.ValidDates) / float64(sum.TotalRecords) * 100
	}
	for z, n := range aggregate.ZoneCounts(aggregate.Servers(v.records)) {
		resp.ServersByZone[z.String()] = n
	}
	return resp, nil
}

func usersView(v *viewRequest) (any, *Error) {
	return aggregate.Users(v.records), nil
}

func serversView(v *viewRequest) (any, *Error) {
	servers := aggregate.Servers(v.records)
	if z := v.r.URL.Query().Get("zone"); z != "" {
		want, err := zone.Parse(z)
		if err != nil {
			return nil, NewBadRequest(err.Error())
		}
		out := make([]aggregate.ServerStat, 0, len(servers))
		for _, srv := range servers {
			if srv.Zones.Overall == want {
				out = append(out, srv)
			}
		}
		servers = out
	}
	return servers, nil
}

func modelsView(v *viewRequest) (any, *Error) {
	return aggregate.Models(v.records), nil
}

func modelTypesView(v *viewRequest) (any, *Error) {
	return aggregate.ModelTypes(aggregate.Models(v.records)), nil
}

func cleanupView(v *viewRequest) (any, *Error) {
	return aggregate.Cleanup(v.records), nil
}

// optionsView lists pickable servers and models. The selection itself does
// not narrow the choices, only the date range does.
func optionsView(v *viewRequest) (any, *Error) {
	inRange := batch.NewDateFilter(v.opts.From, v.opts.To).Filter(v.dataset.Records)
	return aggregate.Options(inRange), nil
}

func activityView(v *viewRequest) (any, *Error) {
	q := v.r.URL.Query()
	server, model := q.Get("server"), q.Get("model")
	if server == "" || model == "" {
		return nil, NewBadRequest("server and model are required")
	}
	return aggregate.Activity(v.records, server, model), nil
}

func projectsView(v *viewRequest) (any, *Error) {
	return aggregate.Projects(v.records, v.opts.ProjectSort), nil
}

func projectView(v *viewRequest) (any, *Error) {
	project, apiErr := findProject(v)
	if apiErr != nil {
		return nil, apiErr
	}
	return project, nil
}

func sectionView(v *viewRequest) (any, *Error) {
	code := chi.URLParam(v.r, "section")
	sec, ok := modelname.ParseSection(code)
	if !ok {
		return nil, NewBadRequest(fmt.Sprintf("unknown section %q", code))
	}

	project, apiErr := findProject(v)
	if apiErr != nil {
		return nil, apiErr
	}

	stat, ok := project.Section(sec)
	if !ok {
		return nil, NewNotFound(fmt.Sprintf("section %s not found in project %s", sec.Code(), project.Name))
	}
	return stat, nil
}

func findProject(v *viewRequest) (*aggregate.ProjectStat, *Error) {
	name := chi.URLParam(v.r, "project")
	project, ok := aggregate.FindProject(aggregate.Projects(v.records, v.opts.ProjectSort), name)
	if !ok {
		return nil, NewNotFound(fmt.Sprintf("project %q not found", name))
	}
	return project, nil
}
