package dedupe

// Package dedupe provides shared singleflight groups used to deduplicate
// concurrent slow work (thumbnail downloads, AI descriptions and game
// exports). Only one job runs for a given key while other callers wait
// for its result.

import "golang.org/x/sync/singleflight"

// ThumbnailGroup deduplicates thumbnail fetches keyed by "asset:<row id>".
var ThumbnailGroup singleflight.Group

// DescribeGroup deduplicates description generation keyed by
// "describe:<row id>".
var DescribeGroup singleflight.Group

// ExportGroup deduplicates export runs keyed by game slug.
var ExportGroup singleflight.Group
