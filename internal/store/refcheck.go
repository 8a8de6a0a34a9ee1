package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"
)

// ref names one foreign-key target a candidate record points at.
type ref struct {
	entity string // entity name used in error messages, e.g. "user"
	table  string // table holding the parent row
	id     int64
}

// checkRefs verifies every foreign-key target exists. It must run within the
// batch transaction strictly before the inserts of the item that declared the
// refs, so a missing parent never leaves partial writes behind.
func checkRefs(ctx context.Context, db DB, refs []ref) error {
	for _, r := range refs {
		query, args, err := dialect.
			Select(goqu.L("1")).
			From(r.table).
			Where(goqu.C("id").Eq(r.id)).
			Limit(1).
			Prepared(true).
			ToSQL()
		if err != nil {
			return failed("build reference check", err)
		}

		var one int
		row := db.QueryRow(ctx, query, args...)
		if scanErr := row.Scan(&one); scanErr != nil {
			if isNoRows(scanErr) {
				return &ReferenceNotFound{Entity: r.entity, ID: r.id}
			}
			return failed("check "+r.entity+" reference", scanErr)
		}
	}
	return nil
}
