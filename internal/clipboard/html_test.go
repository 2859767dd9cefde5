package clipboard

import "testing"

func TestHTMLText(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"fragment", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"nested blocks", "<div><p>one</p><p>two</p></div>", "one two"},
		{"script dropped", "<p>keep</p><script>var x = 1;</script><style>p{}</style>", "keep"},
		{"entities decoded", "<span>a &amp; b</span>", "a & b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLText([]byte(tt.markup)); got != tt.want {
				t.Errorf("HTMLText() = %q, want %q", got, tt.want)
			}
		})
	}
}
