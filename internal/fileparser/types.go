// Package fileparser turns uploaded CSV objects into per-row queue messages.
// It consumes object-created events for the inbound prefix, streams each
// object through an incremental CSV decoder, and fans the decoded rows out
// to the catalog-items topic under a bounded concurrency cap.
package fileparser

// RowMessage is the self-contained queue message for one decoded CSV row.
// Fields maps column names (from the header row) to raw string values;
// SourceKey names the object the row came from so downstream notifications
// can report per-file provenance.
type RowMessage struct {
	SourceKey string            `json:"sourceKey"`
	Fields    map[string]string `json:"fields"`
}
