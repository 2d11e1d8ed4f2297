// Package importers runs the spreadsheet question import.
//
// # Flow
//
//	Upload → ValidateUpload → sheets.ParseWorkbook → taxonomy.Resolver → BuildQuestion → BatchImporter
//
// A Pipeline handles one upload per Run call and reports every step to an
// import session through importsession.Publisher:
//
//	validating   0 → 10   file type check and header read
//	importing   10 → 20   existing subjects and lectures loaded
//	importing   20 → 65   rows resolved against the taxonomy
//	importing   65 → 95   questions written in batches of 50
//	complete         100  summary published
//
// Terminal validation failures (no file, wrong type, unreadable workbook,
// no data rows, missing headers) complete the session at zero progress and
// are returned as *ValidationError.
//
// Row-level problems never stop a run. Invalid rows, taxonomy write failures
// and failed batches are counted in ImportStats.Failed and listed in
// ImportStats.Errors, so Imported + Failed always equals Total.
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(importers.PipelineConfig{
//		Taxonomy:  taxonomyRepo,
//		Questions: questionsRepo,
//		Publisher: importsession.NewPublisher(store, 50, logger),
//	})
//	result, err := pipeline.Run(ctx, "", importers.Upload{Filename: "qcm.xlsx", Data: data})
package importers
