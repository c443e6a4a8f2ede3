package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTMLKeepsLessonMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "headings and paragraphs",
			input: "<h2>Intro</h2><p>Solidity <strong>basics</strong></p>",
			want:  []string{"<h2>Intro</h2>", "<p>Solidity <strong>basics</strong></p>"},
		},
		{
			name:  "lists",
			input: "<ol><li>one</li><li>two</li></ol>",
			want:  []string{"<ol>", "<li>one</li>", "</ol>"},
		},
		{
			name:  "code blocks",
			input: "<pre><code>contract A {}</code></pre>",
			want:  []string{"<pre><code>contract A {}</code></pre>"},
		},
		{
			name:  "tables",
			input: `<table><tr><td colspan="2">cell</td></tr></table>`,
			want:  []string{"<table>", `colspan="2"`, "cell"},
		},
		{
			name:  "images",
			input: `<img src="https://cdn.example.com/a.png" alt="diagram">`,
			want:  []string{`src="https://cdn.example.com/a.png"`, `alt="diagram"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeHTML(tt.input)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestSanitizeHTMLRemovesDangerousContent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		removed []string
	}{
		{name: "script", input: `<p>hi</p><script>alert(1)</script>`, removed: []string{"<script", "alert(1)"}},
		{name: "iframe", input: `<iframe src="https://evil.example"></iframe>`, removed: []string{"<iframe"}},
		{name: "event handler", input: `<img src="https://x.example/a.png" onerror="steal()">`, removed: []string{"onerror", "steal"}},
		{name: "javascript link", input: `<a href="javascript:alert(1)">x</a>`, removed: []string{"javascript:"}},
		{name: "form", input: `<form><input name="key"></form>`, removed: []string{"<form", "<input"}},
		{name: "style", input: `<style>body{}</style><p>ok</p>`, removed: []string{"<style", "body{}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeHTML(tt.input)
			for _, r := range tt.removed {
				assert.NotContains(t, got, r)
			}
		})
	}
}

func TestSanitizeHTMLLinksOpenInNewTab(t *testing.T) {
	got := SanitizeHTML(`<a href="https://docs.soliditylang.org" target="_self">docs</a>`)

	assert.Contains(t, got, `target="_blank"`)
	assert.Contains(t, got, "noopener")
	assert.Contains(t, got, "noreferrer")
	assert.NotContains(t, got, `target="_self"`)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "", SanitizeText(""))
	assert.Equal(t, "Intro to Solidity", SanitizeText("<h1>Intro to <em>Solidity</em></h1>"))
	assert.Equal(t, "a & b", SanitizeText("<b>a &amp; b</b>"))
	assert.NotContains(t, SanitizeText(`<script>alert(1)</script>x`), "<script")
}

func TestSanitizeIsIdempotent(t *testing.T) {
	input := `<p>Read <a href="https://example.com">this</a></p><img src="https://example.com/a.png">`
	once := SanitizeHTML(input)
	assert.Equal(t, once, SanitizeHTML(once))
}
