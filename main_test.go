package main

import "testing"

func TestNewApp(t *testing.T) {
	app := newApp()
	if app.Command("scan") == nil {
		t.Fatalf("command scan not registered")
	}
	h := app.Command("history")
	if h == nil {
		t.Fatalf("command history not registered")
	}
	var hasShow bool
	for _, sub := range h.Subcommands {
		if sub.Name == "show" {
			hasShow = true
		}
	}
	if !hasShow {
		t.Errorf("history show subcommand not registered")
	}
}
