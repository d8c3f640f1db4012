// Package artifact defines the typed decomposition of one AI completion.
package artifact

import "encoding/json"

// Bundle is the category-separated decomposition of a completion's fenced
// and unfenced content. Every field defaults to the empty string; absence of
// a category is not an error. The JSON names match the stored project
// document shape.
type Bundle struct {
	Markup     string `json:"html"`
	Styles     string `json:"css"`
	Script     string `json:"js"`
	Component  string `json:"react"`
	ServerCode string `json:"backend"`
	Notes      string `json:"instructions"`
}

// IsEmpty reports whether no category was populated. An empty bundle is a
// valid extraction result, not a failure.
func (b Bundle) IsEmpty() bool {
	return b == Bundle{}
}

// HasCode reports whether any code-bearing field is populated.
func (b Bundle) HasCode() bool {
	return b.Markup != "" || b.Styles != "" || b.Script != "" ||
		b.Component != "" || b.ServerCode != ""
}

// Serialize renders the bundle as indented JSON for inclusion in a
// modification prompt.
func (b Bundle) Serialize() string {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		// Bundle is all strings; MarshalIndent cannot fail on it.
		return "{}"
	}
	return string(data)
}

// File is one named project file derived from a bundle category.
type File struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// Files maps populated categories onto named project files for persistence
// and export. Empty categories produce no file.
func (b Bundle) Files() []File {
	var files []File
	if b.Markup != "" {
		files = append(files, File{Name: "index.html", Content: b.Markup, Language: "html"})
	}
	if b.Styles != "" {
		files = append(files, File{Name: "styles.css", Content: b.Styles, Language: "css"})
	}
	if b.Script != "" {
		files = append(files, File{Name: "script.js", Content: b.Script, Language: "javascript"})
	}
	if b.Component != "" {
		files = append(files, File{Name: "App.jsx", Content: b.Component, Language: "jsx"})
	}
	if b.ServerCode != "" {
		files = append(files, File{Name: "server.js", Content: b.ServerCode, Language: "backend"})
	}
	if b.Notes != "" {
		files = append(files, File{Name: "README.md", Content: b.Notes, Language: "markdown"})
	}
	return files
}
