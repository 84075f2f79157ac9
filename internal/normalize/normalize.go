// Package normalize turns the archive's raw per-category JSON
// shapes into flat event records. Parsing is tolerant: the
// export format drifts across platform versions, so fields are
// extracted by path with gjson and records without a resolvable
// timestamp are rejected here, never entering the pipeline.
package normalize

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/AyGoub/gramview/internal/event"
	"github.com/AyGoub/gramview/internal/timeutil"
)

// ParseFunc converts one archive file's bytes into event records
// in file order. An error means the whole file was unreadable;
// individually malformed entries are skipped silently.
type ParseFunc func(data []byte) ([]event.Record, error)

// stringListRecords extracts records from the export's common
// "string_list_data" shape: a root array whose entries each hold
// a single-element list of {timestamp, value, href}.
func stringListRecords(
	data []byte, rootKey, category string,
	attrs func(entry, item gjson.Result) map[string]string,
) ([]event.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: invalid JSON", rootKey)
	}

	var records []event.Record
	gjson.GetBytes(data, rootKey).ForEach(
		func(_, entry gjson.Result) bool {
			item := entry.Get("string_list_data.0")
			if !item.Exists() {
				return true
			}
			ts := timeutil.FromUnix(item.Get("timestamp").Int())
			if ts.IsZero() {
				return true
			}
			records = append(records, event.Record{
				Timestamp: ts,
				Category:  category,
				Attrs:     attrs(entry, item),
			})
			return true
		},
	)
	return records, nil
}

// profileAttrs maps the connection-file item shape, where the
// value is a username and the href a profile URL.
func profileAttrs(_, item gjson.Result) map[string]string {
	return map[string]string{
		"username": item.Get("value").Str,
		"url":      item.Get("href").Str,
	}
}
