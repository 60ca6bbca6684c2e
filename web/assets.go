// Package web holds the embedded single-page UIs.
package web

import "embed"

//go:embed static/*.html
var pages embed.FS

// VoicePage returns the recorder UI markup.
func VoicePage() []byte {
	return mustPage("static/voice.html")
}

// ChatPage returns the chat UI markup.
func ChatPage() []byte {
	return mustPage("static/chat.html")
}

func mustPage(name string) []byte {
	data, err := pages.ReadFile(name)
	if err != nil {
		// embedded files are checked at build time
		panic(err)
	}
	return data
}
