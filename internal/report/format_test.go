package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deixis/tomorin/internal/playground"
)

func success(stdout string) playground.Result {
	return playground.Result{Success: true, Stdout: stdout}
}

func failure(stderr string) playground.Result {
	return playground.Result{Success: false, Stderr: stderr}
}

func TestFormat_Success(t *testing.T) {
	tests := []struct {
		name    string
		res     playground.Result
		private bool
		want    string
	}{
		{"round trip", success("42"), false, "42"},
		{"trimmed", success("\n  42\n\n"), false, "42"},
		{"empty", success(""), false, NoOutput},
		{"whitespace only", success(" \n\t"), false, NoOutput},
		{"escaped", success("Vec<&str> > 0"), false, "Vec&lt;&amp;str&gt; &gt; 0"},
		{"quotes kept", success(`"a" 'b'`), false, `"a" 'b'`},
		{"truncated lines", success("1\n2\n3\n4\n5"), false, "1\n2\n3..."},
		{"private keeps lines", success("1\n2\n3\n4\n5"), true, "1\n2\n3\n4\n5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.res, "nightly", tt.private))
		})
	}
}

func TestFormat_ScenarioErrorCodeLink(t *testing.T) {
	res := playground.Result{
		Success: false,
		Stderr:  "error[E0308]: mismatched types\n --> src/main.rs:3:5\n",
	}
	got := Format(res, "nightly", false)

	first, _, _ := strings.Cut(got, "\n")
	assert.True(t, strings.HasPrefix(first, `error<a href="`), "got %q", first)
	assert.Contains(t, first, `>[E0308]</a>:`)
	assert.Contains(t, first, "https://doc.rust-lang.org/nightly/error-index.html#E0308")
	assert.Equal(t,
		`error<a href="https://doc.rust-lang.org/nightly/error-index.html#E0308">[E0308]</a>: mismatched types`,
		got)
}

func TestFormat_ChannelInLink(t *testing.T) {
	got := Format(failure("error[E0425]: cannot find value"), "stable", false)
	assert.Contains(t, got, "https://doc.rust-lang.org/stable/error-index.html#E0425")
}

func TestFormat_Failure(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{
			"skips build noise",
			"   Compiling playground v0.0.1 (/playground)\n    Finished dev [unoptimized] target(s)\n     Running `target/debug/playground`\nthread 'main' panicked at src/main.rs:2:5",
			"thread 'main' panicked at src/main.rs:2:5",
		},
		{
			"prefers error line",
			"warning: unused variable\nerror: aborting due to previous error",
			"error: aborting due to previous error",
		},
		{
			"falls back to first line",
			"warning: one\nwarning: two",
			"warning: one",
		},
		{"nothing", "   Compiling playground\n\n", NoMessage},
		{"empty", "", NoMessage},
		{
			"code spans",
			"error[E0599]: no method named `foo` found for type `i32`",
			`error<a href="https://doc.rust-lang.org/nightly/error-index.html#E0599">[E0599]</a>: no method named <code>foo</code> found for type <code>i32</code>`,
		},
		{
			"escapes before spans",
			"error: expected `<`, found `&`",
			"error: expected <code>&lt;</code>, found <code>&amp;</code>",
		},
		{
			"issue link",
			"error: use of unstable library feature `test` (see issue #50297)",
			`error: use of unstable library feature <code>test</code> (see issue <a href="https://github.com/rust-lang/rust/issues/50297">#50297</a>)`,
		},
		{
			"code link only at start",
			"note: see error[E0308]: here",
			"note: see error[E0308]: here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(failure(tt.stderr), "nightly", false))
		})
	}
}

func TestFormat_IssueLinkOnce(t *testing.T) {
	got := Format(failure("error: a (see issue #1) b (see issue #2)"), "nightly", false)
	assert.Equal(t, 1, strings.Count(got, "<a href"))
	assert.Contains(t, got, "(see issue #2)")
}

func TestSelectLine(t *testing.T) {
	line, ok := SelectLine("  Compiling x\n  error: boom  \n")
	require.True(t, ok)
	assert.Equal(t, "error: boom", line)

	_, ok = SelectLine("Finished\nRunning\n")
	assert.False(t, ok)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hello", "hello"},
		{"two newlines", "a\nb\nc", "a\nb\nc"},
		{"third newline", "a\nb\nc\nd", "a\nb\nc..."},
		{"exact width", strings.Repeat("x", MaxColumns), strings.Repeat("x", MaxColumns)},
		{"over width", strings.Repeat("x", MaxColumns+4), strings.Repeat("x", MaxColumns-3) + "..."},
		{"wide glyphs", strings.Repeat("中", 110), strings.Repeat("中", 106) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, MaxLines, MaxColumns))
		})
	}
}

func TestTruncate_WidthBound(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 500),
		strings.Repeat("中", 500),
		strings.Repeat("a中", 300),
		strings.Repeat("é", 400),
		strings.Repeat("e\u0301", 400),
		strings.Repeat("ｱｲｳ漢字", 100),
	}
	for _, in := range inputs {
		got := Truncate(in, MaxLines, MaxColumns)
		require.True(t, strings.HasSuffix(got, Ellipsis), "no ellipsis for %q", in[:10])
		assert.LessOrEqual(t, StringWidth(got), MaxColumns+2)
	}
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 1, Width('a'))
	assert.Equal(t, 2, Width('中'))
	assert.Equal(t, 0, Width('\u0301'))
	assert.Equal(t, 1, Width('\n'))
	assert.Equal(t, 1, Width('\t'))
}
