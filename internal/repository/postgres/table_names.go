package postgres

import "fmt"

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Documents     string
	Categories    string
	Notifications string
	Profiles      string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Documents:     fmt.Sprintf("%sdocuments", prefix),
		Categories:    fmt.Sprintf("%sdocument_categories", prefix),
		Notifications: fmt.Sprintf("%snotifications", prefix),
		Profiles:      fmt.Sprintf("%sprofiles", prefix),
	}
}
