// Package mdc provides a mapped diagnostic context (MDC) for structured
// logging: a key-value store of string attributes attached to the logging
// infrastructure, used to enrich log records with contextual data (request
// IDs, correlation IDs, trace IDs) without threading that data through
// every function call.
//
// Two stores are provided:
//
//   - A local Store, attached to a context.Context and owned by a single
//     execution context (one request, one goroutine chain). It requires no
//     synchronization and is created explicitly, typically by HTTP
//     middleware or at goroutine entry via NewContext.
//   - A process-wide SharedStore, obtained from Global(), shared by all
//     execution contexts. Every access is mediated by a read-write mutex.
//
// Logging front-ends consume both stores through their Entries snapshot at
// the moment a record is emitted. An slog.Handler that does exactly that
// ships with the demo service in this repository.
//
// Basic usage:
//
//	ctx := mdc.NewContext(context.Background())
//	mdc.Insert(ctx, "request_id", "abc123")
//
//	logger.InfoContext(ctx, "handling request") // record carries request_id
//
// Temporary overrides are panic-safe with a scoped guard:
//
//	defer mdc.InsertScoped(ctx, "phase", "flush").Restore()
//
// Forwarding the current pairs to a new goroutine:
//
//	snapshot := mdc.FromContext(ctx).Copy()
//	go func() {
//		ctx := mdc.WithStore(context.Background(), snapshot)
//		// ...
//	}()
package mdc
