package db

import (
	_ "embed"
)

// Schema and migrations

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Video queries

//go:embed sql/upsert_video.sql
var UpsertVideoSQL string

// Run queries

//go:embed sql/insert_run.sql
var InsertRunSQL string

//go:embed sql/update_run_source.sql
var UpdateRunSourceSQL string

//go:embed sql/mark_run_extracted.sql
var MarkRunExtractedSQL string

//go:embed sql/mark_run_finished.sql
var MarkRunFinishedSQL string

//go:embed sql/select_runs.sql
var SelectRunsSQL string

//go:embed sql/select_run_by_id.sql
var SelectRunByIDSQL string

//go:embed sql/delete_runs.sql
var DeleteRunsSQL string
