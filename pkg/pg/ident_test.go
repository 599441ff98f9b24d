package pg

import "testing"

func TestQualifiedName(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		table  string
		want   string
	}{
		{
			name:   "Plain identifiers",
			schema: "public",
			table:  "orders",
			want:   `"public"."orders"`,
		},
		{
			name:   "Mixed case preserved",
			schema: "Sales",
			table:  "LineItems",
			want:   `"Sales"."LineItems"`,
		},
		{
			name:   "Embedded quote doubled",
			schema: "public",
			table:  `we"ird`,
			want:   `"public"."we""ird"`,
		},
		{
			name:   "Spaces and keywords",
			schema: "app data",
			table:  "select",
			want:   `"app data"."select"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QualifiedName(tt.schema, tt.table)
			if got != tt.want {
				t.Errorf("QualifiedName(%q, %q) = %s, want %s", tt.schema, tt.table, got, tt.want)
			}
		})
	}
}
