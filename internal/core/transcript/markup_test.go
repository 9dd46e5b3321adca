package transcript

import "testing"

func TestMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"escape", `a < b & "c" 'd'`, "a &lt; b &amp; &#34;c&#34; &#39;d&#39;"},
		{"bold", "**yes**", "<strong>yes</strong>"},
		{"two bold spans", "**a** and **b**", "<strong>a</strong> and <strong>b</strong>"},
		{"odd bold markers", "**a** and **b", "<strong>a</strong> and **b"},
		{"italic star", "*soft*", "<em>soft</em>"},
		{"italic underscore", "_soft_", "<em>soft</em>"},
		{"underline", "__line__", "<u>line</u>"},
		{"strike", "~~gone~~", "<del>gone</del>"},
		{"spoiler", "||secret||", `<span class="spoiler">secret</span>`},
		{"bold italic", "***both***", "<em><strong>both</strong></em>"},
		{"nested", "**bold *and italic***", "<strong>bold <em>and italic</em></strong>"},
		{"bold inside italic", "*a **b** c*", "<em>a <strong>b</strong> c</em>"},
		{"shared opening run", "***a** b*", "<em><strong>a</strong> b</em>"},
		{"italic inside bold", "**a *b* c**", "<strong>a <em>b</em> c</strong>"},
		{"crossed delimiters stay nested", "*a _b* c_", "<em>a _b</em> c_"},
		{"closing run with extra star", "*a*b*", "<em>a</em>b*"},
		{"odd strike run", "~~~gone~~", "~<del>gone</del>"},
		{"spoiler around bold", "||**x**||", `<span class="spoiler"><strong>x</strong></span>`},
		{"snake case untouched", "see case_file_name here", "see case_file_name here"},
		{"lone star", "5 * 3", "5 * 3"},
		{"single tilde and pipe", "~ and |", "~ and |"},
		{"empty pair stays literal", "****", "****"},
		{"newlines", "line one\nline two", "line one<br>line two"},
		{"crlf", "a\r\nb", "a<br>b"},
		{"markup cannot inject html", "**<script>**", "<strong>&lt;script&gt;</strong>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Markup(tt.input)); got != tt.want {
				t.Errorf("Markup(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
