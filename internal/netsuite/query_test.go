package netsuite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name       string
		recordType string
		fields     string
		condition  string
		orderBy    string
		want       string
	}{
		{
			name:       "all clauses",
			recordType: "customer",
			fields:     "*",
			condition:  "id=1",
			orderBy:    "id",
			want:       "SELECT * FROM customer WHERE id=1 ORDER BY id",
		},
		{
			name:       "no condition or order",
			recordType: "customer",
			fields:     "*",
			want:       "SELECT * FROM customer",
		},
		{
			name:       "condition only",
			recordType: "transaction",
			fields:     "id, tranid",
			condition:  "type='SalesOrd'",
			want:       "SELECT id, tranid FROM transaction WHERE type='SalesOrd'",
		},
		{
			name:       "order only",
			recordType: "invoice",
			fields:     "id",
			orderBy:    "trandate DESC",
			want:       "SELECT id FROM invoice ORDER BY trandate DESC",
		},
		{
			name:       "empty fields defaults to star",
			recordType: "employee",
			want:       "SELECT * FROM employee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSelect(tt.recordType, tt.fields, tt.condition, tt.orderBy)
			assert.Equal(t, tt.want, got)
		})
	}
}
