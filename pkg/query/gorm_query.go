package query

import "gorm.io/gorm"

// GormQueryBuilder accumulates filter, sort and pagination clauses for the
// listing endpoints and applies them onto a GORM model query. Filters are
// always parameterized; field and order strings come from the repo layer,
// never straight from the request.
type GormQueryBuilder struct {
	base       *gorm.DB
	conditions []condition
	orderBy    []string
	limit      int
	offset     int
	paginated  bool
}

type condition struct {
	expr string
	args []interface{}
}

func NewGormQueryBuilder(base *gorm.DB) *GormQueryBuilder {
	return &GormQueryBuilder{base: base}
}

// AddFilter appends a parameterized WHERE clause.
func (qb *GormQueryBuilder) AddFilter(expr string, args ...interface{}) *GormQueryBuilder {
	qb.conditions = append(qb.conditions, condition{expr: expr, args: args})
	return qb
}

// AddSort appends an ORDER BY clause. Repos validate the field name before
// calling.
func (qb *GormQueryBuilder) AddSort(field, order string) *GormQueryBuilder {
	qb.orderBy = append(qb.orderBy, field+" "+order)
	return qb
}

// SetPagination sets LIMIT/OFFSET for the row query. The count query built
// by BuildForCount ignores pagination so the total reflects the whole
// filtered set.
func (qb *GormQueryBuilder) SetPagination(limit, offset int) *GormQueryBuilder {
	qb.limit = limit
	qb.offset = offset
	qb.paginated = true
	return qb
}

// BuildForCount returns the filtered query without ordering or pagination.
func (qb *GormQueryBuilder) BuildForCount() *gorm.DB {
	return qb.filtered()
}

// Build returns the full row query with ordering and pagination applied.
func (qb *GormQueryBuilder) Build() *gorm.DB {
	q := qb.filtered()
	for _, o := range qb.orderBy {
		q = q.Order(o)
	}
	if qb.paginated {
		q = q.Limit(qb.limit).Offset(qb.offset)
	}
	return q
}

func (qb *GormQueryBuilder) filtered() *gorm.DB {
	q := qb.base
	for _, c := range qb.conditions {
		q = q.Where(c.expr, c.args...)
	}
	return q
}
