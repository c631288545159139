package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 {
	return &v
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "counter1", want: "counter1"},
		{in: "MAP_INPUT-RECORDS", want: "MAP_INPUT-RECORDS"},
		{in: "#!v3?", want: "__v3_"},
		{in: " v1", want: "_v1"},
		{in: "a..b", want: "a__b"},
		{in: "org.apache.hadoop", want: "org_apache_hadoop"},
		{in: "größe", want: "gr__e"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_NeverCollapses(t *testing.T) {
	in := "a   b"
	out := Sanitize(in)

	assert.Equal(t, "a___b", out)
	assert.Len(t, out, len(in))
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("graphite-prefix.static-name"))
	assert.True(t, ValidName("a"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("a..b"))
	assert.False(t, ValidName(".a"))
	assert.False(t, ValidName("a b"))
}

func TestPattern(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{pattern: "", value: "anything", want: true},
		{pattern: "*", value: "anything", want: true},
		{pattern: "countByVersions", value: "countByVersions", want: true},
		{pattern: "countByVersions", value: "countByVersions2", want: false},
		{pattern: "count*", value: "countByVersions", want: true},
		{pattern: "*Versions", value: "countByVersions", want: true},
		{pattern: "*By*", value: "countByVersions", want: true},
		{pattern: "a*a", value: "a", want: false},
		{pattern: "org.*.TaskCounter", value: "org.apache.hadoop.TaskCounter", want: true},
		{pattern: "org.*.TaskCounter", value: "org.apache.hadoop.JobCounter", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, compilePattern(tt.pattern).match(tt.value))
		})
	}
}

func TestResolve_NoValueSkips(t *testing.T) {
	m, err := Compile([]Rule{{Kind: KindStatic, Group: "g", Counter: "c", Name: "static-name"}})
	require.NoError(t, err)

	name, ok := m.Resolve("g", "c", nil)
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestResolve_Static(t *testing.T) {
	m, err := Compile([]Rule{{
		Kind:    KindStatic,
		Group:   "org.apache.hadoop.mapreduce.TaskCounter",
		Counter: "MAP_INPUT_RECORDS",
		Name:    "static-name",
	}})
	require.NoError(t, err)

	name, ok := m.Resolve("org.apache.hadoop.mapreduce.TaskCounter", "MAP_INPUT_RECORDS", ptr(1234))
	require.True(t, ok)
	assert.Equal(t, "static-name", name)

	// Other counters in the group fall through to the default.
	name, ok = m.Resolve("org.apache.hadoop.mapreduce.TaskCounter", "MAP_OUTPUT_RECORDS", ptr(1))
	require.True(t, ok)
	assert.Equal(t, "org_apache_hadoop_mapreduce_TaskCounter.MAP_OUTPUT_RECORDS", name)
}

func TestResolve_Rename(t *testing.T) {
	m, err := Compile([]Rule{{
		Kind:    KindRename,
		Group:   "countByVersions",
		Counter: "^(.*)$",
		Name:    "countByVersions.$1",
	}})
	require.NoError(t, err)

	for _, counter := range []string{"v1", "v2", "v3"} {
		name, ok := m.Resolve("countByVersions", counter, ptr(1))
		require.True(t, ok)
		assert.Equal(t, "countByVersions."+counter, name)
	}
}

func TestResolve_RenameNamedGroupSanitizesCapture(t *testing.T) {
	m, err := Compile([]Rule{{
		Kind:    KindRename,
		Group:   "jobs",
		Counter: `^job (?P<id>.+)$`,
		Name:    "jobs.${id}.count",
	}})
	require.NoError(t, err)

	name, ok := m.Resolve("jobs", "job a/b", ptr(1))
	require.True(t, ok)
	assert.Equal(t, "jobs.a_b.count", name)

	// No match falls back.
	name, ok = m.Resolve("jobs", "other", ptr(1))
	require.True(t, ok)
	assert.Equal(t, "jobs.other", name)
}

func TestResolve_Implicit(t *testing.T) {
	m, err := Compile([]Rule{
		{Kind: KindImplicit, Group: "graphite-prefix"},
		{Kind: KindImplicit, Group: "wordcount", Name: "wc"},
	})
	require.NoError(t, err)

	name, ok := m.Resolve("graphite-prefix", "counter1", ptr(1234))
	require.True(t, ok)
	assert.Equal(t, "counter1", name)

	name, ok = m.Resolve("wordcount", "bad name", ptr(1))
	require.True(t, ok)
	assert.Equal(t, "wc.bad_name", name)
}

func TestResolve_FirstMatchWins(t *testing.T) {
	m, err := Compile([]Rule{
		{Kind: KindStatic, Group: "g", Counter: "c", Name: "first"},
		{Kind: KindStatic, Group: "g", Counter: "*", Name: "second"},
		{Kind: KindImplicit, Group: "*", Name: "third"},
	})
	require.NoError(t, err)

	name, _ := m.Resolve("g", "c", ptr(1))
	assert.Equal(t, "first", name)

	name, _ = m.Resolve("g", "d", ptr(1))
	assert.Equal(t, "second", name)

	name, _ = m.Resolve("h", "d", ptr(1))
	assert.Equal(t, "third.d", name)
}

func TestResolve_FallbackSanitizes(t *testing.T) {
	m, err := Compile(nil)
	require.NoError(t, err)

	name, ok := m.Resolve("countByVersions", "#!v3?", ptr(89))
	require.True(t, ok)
	assert.Equal(t, "countByVersions.__v3_", name)

	name, ok = m.Resolve("", "", ptr(0))
	require.True(t, ok)
	assert.Equal(t, "_._", name)
	assert.True(t, ValidName(name))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr string
	}{
		{
			name:    "unknown kind",
			rule:    Rule{Kind: "regex"},
			wantErr: "unknown rule kind",
		},
		{
			name:    "static without name",
			rule:    Rule{Kind: KindStatic, Group: "g"},
			wantErr: "static rule requires a name",
		},
		{
			name:    "static with unsafe name",
			rule:    Rule{Kind: KindStatic, Name: "bad name"},
			wantErr: "not a valid metric name",
		},
		{
			name:    "rename with bad expression",
			rule:    Rule{Kind: KindRename, Counter: "(", Name: "a.$1"},
			wantErr: "compiling rename expression",
		},
		{
			name:    "rename with unknown group",
			rule:    Rule{Kind: KindRename, Counter: "^(.*)$", Name: "a.$2"},
			wantErr: "references unknown group",
		},
		{
			name:    "rename with unsafe template",
			rule:    Rule{Kind: KindRename, Counter: "^(.*)$", Name: "a..$1"},
			wantErr: "does not produce a valid metric name",
		},
		{
			name:    "implicit with unsafe base",
			rule:    Rule{Kind: KindImplicit, Name: "a b"},
			wantErr: "implicit rule base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]Rule{tt.rule})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "rule 0")
		})
	}
}

func TestCompile_KindIsCaseInsensitive(t *testing.T) {
	m, err := Compile([]Rule{{Kind: "STATIC", Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}
