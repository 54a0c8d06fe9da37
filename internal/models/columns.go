package models

// Default header names of the synchronization server activity export.
const (
	ColumnDate   = "Date (UTC)"
	ColumnServer = "Сервер"
	ColumnModel  = "Имя файла"
	ColumnUser   = "User"
)

// Columns maps the logical fields of a record to header names.
// SupportSize and ModelSize list header variants in priority order.
type Columns struct {
	Date        string   `yaml:"date" json:"date"`
	Server      string   `yaml:"server" json:"server"`
	Model       string   `yaml:"model" json:"model"`
	User        string   `yaml:"user" json:"user"`
	SupportSize []string `yaml:"support_size" json:"support_size"`
	ModelSize   []string `yaml:"model_size" json:"model_size"`
}

// DefaultColumns returns the header names used by the export.
func DefaultColumns() Columns {
	return Columns{
		Date:   ColumnDate,
		Server: ColumnServer,
		Model:  ColumnModel,
		User:   ColumnUser,
		SupportSize: []string{
			"SupportSize (байты)",
			"SupportSize  (байты)",
			"SupportSize(байты)",
		},
		ModelSize: []string{
			"ModelSize (байты)",
			"ModelSize  (байты)",
			"ModelSize(байты)",
		},
	}
}

// WithDefaults fills empty fields from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if c.Date == "" {
		c.Date = d.Date
	}
	if c.Server == "" {
		c.Server = d.Server
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.User == "" {
		c.User = d.User
	}
	if len(c.SupportSize) == 0 {
		c.SupportSize = d.SupportSize
	}
	if len(c.ModelSize) == 0 {
		c.ModelSize = d.ModelSize
	}
	return c
}
