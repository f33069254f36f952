package llm

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"bare array", `[1,2]`, `[1,2]`},
		{"fenced object", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose prefix", `结果如下：{"a":1}`, `{"a":1}`},
		{"prose suffix", `{"a":1} 以上就是结果`, `{"a":1}`},
		{"array before object text", `[{"a":1}] trailing`, `[{"a":1}]`},
		{"no json falls back", "纯文本输出", "纯文本输出"},
		{"empty input", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.in); got != tt.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
