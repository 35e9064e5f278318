package goksql

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/fbiengine/goksql/internal/compiler"
)

// Executor runs queries against one engine. It holds no per-query state and is safe for concurrent use.
type Executor struct {
	cfg      *Config
	rest     *ksqlRestful
	resolver *columnResolver
	metadata *metadataFetcher
	rows     *rowDecoder
	catalog  *catalogLister
	format   OutputFormat
}

// NewExecutor validates cfg, fills in its defaults and returns an Executor writing JSON envelopes.
func NewExecutor(cfg *Config) (*Executor, error) {
	if cfg == nil {
		return nil, ErrEmptyBaseURL
	}
	if err := fillMissingConfigParameters(cfg); err != nil {
		return nil, err
	}
	if cfg.Tracing != "" {
		if err := logger.SetLogLevel(cfg.Tracing); err != nil {
			logger.Warnf("ignoring tracing level %v: %v", cfg.Tracing, err)
		}
	}
	rest, err := newKsqlRestful(cfg)
	if err != nil {
		return nil, (&KsqlError{
			Number:      ErrCodeFailedToParseDSN,
			Kind:        KindConfiguration,
			Message:     "invalid base URL %v",
			MessageArgs: []interface{}{cfg.BaseURL},
		}).withCause(err)
	}
	var c Compiler = compiler.New()
	if cfg.Compiler != nil {
		c = cfg.Compiler
	}
	logger.Infof("goksql %v executor created for %v, authenticator: %v", GoksqlVersion, cfg.BaseURL, cfg.Authenticator)
	return &Executor{
		cfg:      cfg,
		rest:     rest,
		resolver: &columnResolver{compiler: c},
		metadata: &metadataFetcher{rest: rest},
		rows:     &rowDecoder{rest: rest},
		catalog:  &catalogLister{rest: rest},
		format:   FormatJSON,
	}, nil
}

// WithOutputFormat returns a copy of the executor that writes format.
func (e *Executor) WithOutputFormat(format OutputFormat) *Executor {
	copied := *e
	copied.format = format
	return &copied
}

// OutputFormat returns the format Execute writes.
func (e *Executor) OutputFormat() OutputFormat {
	return e.format
}

func withExecutionContext(ctx context.Context, source string) context.Context {
	if _, ok := ctx.Value(KsqlExecutionIDKey).(string); !ok {
		ctx = context.WithValue(ctx, KsqlExecutionIDKey, uuid.NewString())
	}
	if source != "" {
		ctx = context.WithValue(ctx, KsqlSourceKey, source)
	}
	return ctx
}

// Run executes q and returns its result. q itself is not modified.
func (e *Executor) Run(ctx context.Context, q *Query) (*Result, error) {
	if q == nil {
		return nil, ErrNilQuery
	}
	query := *q
	ctx = withExecutionContext(ctx, query.Source)
	logger.WithContext(ctx).Infof("executing query, metadata requested: %v", query.MetadataRetrieved)

	res := &Result{Columns: ColumnList{}, Rows: make([]ProjectedRow, 0)}
	if query.MetadataRetrieved {
		metadata, err := e.metadata.describe(ctx, query.Source)
		if err != nil {
			return nil, err
		}
		query.rewrite(BuildProjectionStatement(query.Source, metadata.Names()))
		logger.WithContext(ctx).Debugf("statement rewritten to %v", query.Statement)
		res.Metadata = metadata
	}

	if query.Statement == ShowTablesAndStreamsStatement {
		names, err := e.catalog.list(ctx)
		if err != nil {
			return nil, err
		}
		res.Columns = ColumnList{catalogNameField}
		res.Rows = catalogRecords(names)
		return res, nil
	}

	resolved := e.resolver.resolve(ctx, &query)
	res.Columns = resolved.columns
	if len(resolved.columns) == 0 {
		logger.WithContext(ctx).Debugf("no columns resolved, the engine is not queried")
		return res, nil
	}

	stream, err := e.rows.run(ctx, query.Statement)
	if err != nil {
		return nil, err
	}
	defer stream.close()
	rows, err := projectRows(resolved.columns, stream)
	if err != nil {
		logger.WithContext(ctx).Errorf("failed to project rows: %v", err)
		return nil, err
	}
	res.Rows = rows
	logger.WithContext(ctx).Infof("query returned %v rows", len(rows))
	return res, nil
}

// Execute runs q and writes the encoded result to w. Nothing is written when any step fails.
func (e *Executor) Execute(ctx context.Context, q *Query, w io.Writer) error {
	res, err := e.Run(ctx, q)
	if err != nil {
		return err
	}
	data, err := res.Encode(e.format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Describe returns the column types of source.
func (e *Executor) Describe(ctx context.Context, source string) (*MetadataMap, error) {
	return e.metadata.describe(withExecutionContext(ctx, source), source)
}

// Catalog lists the tables and streams known to the engine, tables first.
func (e *Executor) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	return e.catalog.entries(withExecutionContext(ctx, ""))
}

// ExecuteAndExport runs q and uploads the encoded result to the location in exportCfg.
func (e *Executor) ExecuteAndExport(ctx context.Context, q *Query, exportCfg *ExportConfig) (*ExportedObject, error) {
	res, err := e.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	data, err := res.Encode(e.format)
	if err != nil {
		return nil, err
	}
	return ExportResult(ctx, exportCfg, data)
}
