// Package collector provides query-driven source collectors. Each collector
// talks to one backend and converts its raw hits into canonical items.
// Collectors return errors, but the pipeline treats a failing source as an
// empty contribution; nothing here aborts a run.
package collector

import (
	"newsbrief/pkg/pipeline"
)

var (
	_ pipeline.Collector = (*GoogleNews)(nil)
	_ pipeline.Collector = (*NewsAPI)(nil)
	_ pipeline.Collector = (*RSS)(nil)
)
