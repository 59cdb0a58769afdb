package meeting

// ExportFormat identifies a minutes JSONL export header line.
const ExportFormat = "minutes-jsonl"

// ExportSchemaVersion is written into every export header.
const ExportSchemaVersion = "1.0"

// ExportHeader is the first line of a JSONL export. Every following line
// is one Record, most recent first.
type ExportHeader struct {
	// MinutesExport marks the header line; it is absent on record lines
	MinutesExport bool   `json:"_minutes_export"`
	Format        string `json:"format"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
	Count         int    `json:"count"`
}

// NewExportHeader builds a header for count records exported at the given Unix time.
func NewExportHeader(count int, exportedAt int64) ExportHeader {
	return ExportHeader{
		MinutesExport: true,
		Format:        ExportFormat,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
		Count:         count,
	}
}
