// Package services orchestrates an export run.
//
// ExportService ties the report client, paginator, transformer and
// exporter together:
//
//	svc, err := services.NewExportService(settings,
//	    services.WithLogger(logger),
//	    services.WithTelemetry(providers))
//	if err != nil {
//	    return err
//	}
//	result, err := svc.Run(ctx)
//
// Run is strictly sequential. Every page is fetched before anything is
// transformed, and nothing is written when any page fails.
package services
