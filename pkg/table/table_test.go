package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectEmpty(t *testing.T) {
	assert.NotNil(t, Project(nil))
	assert.Empty(t, Project(nil))
	assert.Empty(t, Project([][]string{}))
	assert.Empty(t, Project([][]string{{"A", "B"}}))
}

func TestProject(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want []map[string]string
	}{
		{
			name: "full rows",
			rows: [][]string{{"MemberID", "Status"}, {"M1", "Active"}, {"M2", "Inactive"}},
			want: []map[string]string{
				{"MemberID": "M1", "Status": "Active"},
				{"MemberID": "M2", "Status": "Inactive"},
			},
		},
		{
			name: "ragged rows",
			rows: [][]string{{"A", "B", "C"}, {"1"}, {}},
			want: []map[string]string{
				{"A": "1", "B": "", "C": ""},
				{"A": "", "B": "", "C": ""},
			},
		},
		{
			name: "extra cells ignored",
			rows: [][]string{{"A"}, {"1", "2", "3"}},
			want: []map[string]string{{"A": "1"}},
		},
		{
			name: "duplicate header keeps last",
			rows: [][]string{{"A", "B", "A"}, {"1", "2", "3"}},
			want: []map[string]string{{"A": "3", "B": "2"}},
		},
		{
			name: "empty header",
			rows: [][]string{{}, {"1", "2"}},
			want: []map[string]string{{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.rows)
			require.Len(t, got, len(tt.want))
			for i, rec := range got {
				assert.Len(t, rec.Fields(), len(tt.want[i]))
				for k, v := range tt.want[i] {
					assert.Equal(t, v, rec.Get(k), "field %s", k)
				}
			}
		})
	}
}

func TestProjectFieldOrder(t *testing.T) {
	got := Project([][]string{{"Z", "A", "Z", "M"}, {"1", "2", "3", "4"}})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Z", "A", "M"}, got[0].Fields())

	b, err := json.Marshal(got[0])
	require.NoError(t, err)
	assert.Equal(t, `{"Z":"3","A":"2","M":"4"}`, string(b))
}

func TestProjectRoundTrip(t *testing.T) {
	header := []string{"CheckPointID", "MemberID", "CompletionStatus", "UpdatedDate"}
	rows := [][]string{
		{"CP1", "M1", "YES", "6/1/2024"},
		{"CP1", "M2", "NO", ""},
	}
	records := Project(append([][]string{header}, rows...))
	assert.Equal(t, rows, Flatten(header, records))
}

func TestRecordJSONArray(t *testing.T) {
	records := Project([][]string{{"Title", "Author"}, {"Dune", `Frank "H"`}})
	b, err := json.Marshal(records)
	require.NoError(t, err)
	assert.Equal(t, `[{"Title":"Dune","Author":"Frank \"H\""}]`, string(b))

	b, err = json.Marshal(Project(nil))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))
}

func TestNewRecord(t *testing.T) {
	r := NewRecord("A", "1", "B", "2", "A", "3")
	assert.Equal(t, []string{"A", "B"}, r.Fields())
	assert.Equal(t, "3", r.Get("A"))
	assert.Equal(t, "", r.Get("missing"))
}
