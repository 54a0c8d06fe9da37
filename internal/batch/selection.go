package batch

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/good-yellow-bee/syncstat/internal/modelname"
	"github.com/good-yellow-bee/syncstat/internal/models"
)

// Selection narrows records to a server, a model and an optional boolean
// expression evaluated per record, for example:
//
//	support_mb > 100 && section == "АР"
//	user startsWith "ivanov" || fields["Версия"] == "2023"
type Selection struct {
	Server string
	Model  string
	Where  string

	program *vm.Program
}

// NewSelection compiles the where expression. An empty expression matches
// every record.
func NewSelection(server, model, where string) (*Selection, error) {
	s := &Selection{Server: server, Model: model, Where: where}
	if where == "" {
		return s, nil
	}

	program, err := expr.Compile(where,
		expr.Env(sampleSelectionEnv()),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile where expression: %w", err)
	}
	s.program = program
	return s, nil
}

// Active reports whether the selection restricts anything.
func (s *Selection) Active() bool {
	return s != nil && (s.Server != "" || s.Model != "" || s.program != nil)
}

// Match reports whether the record is selected.
func (s *Selection) Match(r *models.Record) (bool, error) {
	if s == nil {
		return true, nil
	}
	if s.Server != "" && r.Server != s.Server {
		return false, nil
	}
	if s.Model != "" && r.Model != s.Model {
		return false, nil
	}
	if s.program == nil {
		return true, nil
	}

	result, err := expr.Run(s.program, selectionEnv(r))
	if err != nil {
		return false, fmt.Errorf("evaluate where expression: %w", err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("where expression did not return bool: got %T", result)
	}
	return matched, nil
}

// Apply returns the selected records in their original order. Records whose
// evaluation fails are dropped and counted.
func (s *Selection) Apply(records []models.Record) (selected []models.Record, failed int) {
	if !s.Active() {
		return records, 0
	}

	selected = make([]models.Record, 0, len(records))
	for i := range records {
		ok, err := s.Match(&records[i])
		if err != nil {
			failed++
			continue
		}
		if ok {
			selected = append(selected, records[i])
		}
	}
	return selected, failed
}

func sampleSelectionEnv() map[string]any {
	return map[string]any{
		"server":       "",
		"model":        "",
		"user":         "",
		"date":         time.Time{},
		"day":          "",
		"dated":        false,
		"support_size": 0,
		"model_size":   0,
		"support_mb":   0.0,
		"model_mb":     0.0,
		"project":      "",
		"section":      "",
		"source":       "",
		"line":         0,
		"fields":       map[string]string{},
	}
}

func selectionEnv(r *models.Record) map[string]any {
	project, section := "", string(modelname.SectionOther)
	if p := modelname.Parse(r.Model); p != nil {
		project, section = p.Project, string(p.Section)
	}

	fields := map[string]string(r.Raw)
	if fields == nil {
		fields = map[string]string{}
	}

	return map[string]any{
		"server":       r.Server,
		"model":        r.Model,
		"user":         r.User,
		"date":         r.Date,
		"day":          r.DayKey(),
		"dated":        r.HasDate(),
		"support_size": int(r.SupportSize),
		"model_size":   int(r.ModelSize),
		"support_mb":   models.MB(r.SupportSize),
		"model_mb":     models.MB(r.ModelSize),
		"project":      project,
		"section":      section,
		"source":       r.Source,
		"line":         int(r.Line),
		"fields":       fields,
	}
}
