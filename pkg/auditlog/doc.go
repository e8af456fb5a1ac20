// Package auditlog records the decisions of a single upload attempt as an ordered
// list of structured entries.
//
// Recorder is a slog.Handler, so code writes to the audit log through an ordinary
// *slog.Logger. Every record becomes an Entry holding its time, level, message and
// attributes. A Recorder can forward records to another handler so the same lines
// also reach the process log:
//
//	rec := auditlog.NewRecorder(auditlog.WithNext(processLogger.Handler()))
//	log := slog.New(rec)
//	log.Info("mime type allowed", slog.String("mime", "image/png"))
//
//	for _, e := range rec.Entries() {
//		fmt.Println(e) // mime type allowed mime=image/png
//	}
//
// Entries are append-only. Handlers derived with WithAttrs or WithGroup share the
// same entry list.
package auditlog
