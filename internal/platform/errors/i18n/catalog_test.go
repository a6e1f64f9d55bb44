package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if base.Locale() != BaseLocale {
		t.Fatalf("expected base locale, got %q", base.Locale())
	}
	fallback := GetCatalog("missing-locale")
	if fallback != base {
		t.Fatal("expected fallback to en-US catalog")
	}
	if GetCatalog("") != base {
		t.Fatal("expected empty locale to resolve to en-US catalog")
	}
}

func TestFormatEnglishMessages(t *testing.T) {
	cat := GetCatalog("en-US")
	tests := map[Code]string{
		CodeDuplicateTeacher:  "A teacher has already joined.",
		CodeTeacherNotPresent: "A teacher has not joined yet.",
		CodeUnauthorized:      "Only the teacher can ask a question.",
		CodeNoActiveQuestion:  "No active question.",
		CodeInvalidOption:     "Invalid answer.",
	}
	for code, want := range tests {
		if got := cat.Format(code, nil); got != want {
			t.Fatalf("Format(%s) = %q, want %q", code, got, want)
		}
	}
}

func TestFormatPortugueseMessages(t *testing.T) {
	cat := GetCatalog("pt-BR")
	if cat.Locale() != "pt-BR" {
		t.Fatalf("expected pt-BR catalog, got %q", cat.Locale())
	}
	if got := cat.Format(CodeInvalidOption, nil); got != "Resposta inválida." {
		t.Fatalf("unexpected pt-BR message %q", got)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := GetCatalog("en-US")
	if got := cat.Format("NOT_A_CODE", nil); got != "NOT_A_CODE" {
		t.Fatalf("expected code fallback when message missing, got %q", got)
	}
	if got := cat.Format(CodeInvalidArgument, nil); got != "Invalid request: ." {
		t.Fatalf("expected template to render missing metadata as empty, got %q", got)
	}
	got := cat.Format(CodeInvalidArgument, map[string]string{"reason": "payload too large"})
	if got != "Invalid request: payload too large." {
		t.Fatalf("unexpected rendered message %q", got)
	}
}

func TestMatchLocale(t *testing.T) {
	tests := []struct {
		name        string
		preferences []string
		want        string
	}{
		{name: "no preferences", want: "en-US"},
		{name: "exact tag", preferences: []string{"pt-BR"}, want: "pt-BR"},
		{name: "base language", preferences: []string{"pt"}, want: "pt-BR"},
		{name: "accept language header", preferences: []string{"pt-BR,pt;q=0.9,en;q=0.8"}, want: "pt-BR"},
		{name: "first usable preference wins", preferences: []string{"", "en-US", "pt-BR"}, want: "en-US"},
		{name: "garbage skipped", preferences: []string{"!!", "pt-BR"}, want: "pt-BR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchLocale("en-US", tc.preferences...); got != tc.want {
				t.Fatalf("MatchLocale(%v) = %q, want %q", tc.preferences, got, tc.want)
			}
		})
	}
}
