package goksql

import (
	"context"
)

// Compiler resolves the ordered output column names of a query.
type Compiler interface {
	SelectColumns(query string) ([]string, error)
}

type resolveStatus int

const (
	resolveOK resolveStatus = iota
	resolveCompileFailed
)

// resolveResult keeps a compile failure visible to the caller even though resolution never fails.
type resolveResult struct {
	columns ColumnList
	status  resolveStatus
	cause   error
}

func (r resolveResult) compileFailed() bool {
	return r.status == resolveCompileFailed
}

type columnResolver struct {
	compiler Compiler
}

// resolve never returns an error: a query the compiler rejects resolves to no columns.
func (cr *columnResolver) resolve(ctx context.Context, q *Query) resolveResult {
	source := q.compileSource()
	names, err := cr.compiler.SelectColumns(source)
	if err != nil {
		logger.WithContext(ctx).Errorf("Error compiling the query %v: %v", source, err)
		return resolveResult{
			columns: ColumnList{},
			status:  resolveCompileFailed,
			cause: (&KsqlError{
				Number:    ErrCodeCompilationFailed,
				Kind:      KindCompilationFailure,
				Statement: source,
				Message:   errMsgCompilationFailed,
			}).withCause(err),
		}
	}
	columns := make(ColumnList, len(names))
	copy(columns, names)
	return resolveResult{columns: columns, status: resolveOK}
}
