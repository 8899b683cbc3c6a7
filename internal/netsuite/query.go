package netsuite

import "strings"

// BuildSelect assembles the SuiteQL text for a record search. Absent clauses
// are omitted entirely; there is never a trailing WHERE or ORDER BY. Inputs
// are not quoted or escaped: SuiteQL condition syntax is the caller's
// responsibility, and the query runs under the API user's permissions.
func BuildSelect(recordType, fields, condition, orderBy string) string {
	if fields == "" {
		fields = "*"
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(fields)
	b.WriteString(" FROM ")
	b.WriteString(recordType)
	if condition != "" {
		b.WriteString(" WHERE ")
		b.WriteString(condition)
	}
	if orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderBy)
	}
	return b.String()
}
