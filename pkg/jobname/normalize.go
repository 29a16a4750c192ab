// Package jobname normalizes batch job names as they are ingested.
// Cluster-created runs carry a generated suffix ("daily-etl-29301840");
// history aggregation needs the stable base name.
package jobname

import "strings"

// Normalize strips the last '-'-delimited segment from name. Applied
// exactly once, at ingestion into an execution record; formatting code
// must never re-trim.
func Normalize(name string) string {
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return name
	}
	return name[:idx]
}
