package goksql

import (
	"context"
	"errors"
	"testing"

	"github.com/fbiengine/goksql/internal/compiler"
)

func TestResolveColumns(t *testing.T) {
	sc := &stubCompiler{columns: []string{"a", "b"}}
	cr := &columnResolver{compiler: sc}
	res := cr.resolve(context.Background(), &Query{Statement: "select a, b from t"})
	assertFalseE(t, res.compileFailed())
	assertDeepEqualE(t, res.columns, ColumnList{"a", "b"})
	assertDeepEqualE(t, sc.queries, []string{"select a, b from t"})
}

func TestResolveUsesSourceQuery(t *testing.T) {
	sc := &stubCompiler{columns: []string{"a"}}
	cr := &columnResolver{compiler: sc}
	cr.resolve(context.Background(), &Query{Statement: "select a from t limit 1", SourceQuery: "select a from t"})
	assertDeepEqualE(t, sc.queries, []string{"select a from t"})
}

func TestResolveCompileFailure(t *testing.T) {
	compileErr := errors.New("syntax error")
	cr := &columnResolver{compiler: &stubCompiler{err: compileErr}}
	res := cr.resolve(context.Background(), &Query{Statement: "selec a"})
	assertTrueE(t, res.compileFailed())
	assertNotNilE(t, res.columns)
	assertEmptyE(t, res.columns)
	assertErrIsE(t, res.cause, compileErr)
	var ke *KsqlError
	assertErrorsAsF(t, res.cause, &ke)
	assertEqualE(t, ke.Kind, KindCompilationFailure)
}

func TestResolveWithBuiltinCompiler(t *testing.T) {
	cr := &columnResolver{compiler: compiler.New()}
	res := cr.resolve(context.Background(), &Query{Statement: "select id, count(*) as cnt from orders group by id"})
	assertDeepEqualE(t, res.columns, ColumnList{"id", "cnt"})

	res = cr.resolve(context.Background(), &Query{Statement: "select * from orders"})
	assertTrueE(t, res.compileFailed())
	assertErrIsE(t, res.cause, compiler.ErrStarProjection)
}
