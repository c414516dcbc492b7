package speech

import "testing"

func TestMessage(t *testing.T) {
	if got := Message("tr", "wake_detected"); got != "Evet, dinliyorum" {
		t.Errorf("tr wake_detected = %q", got)
	}
	if got := Message("en", "timeout"); got != "Timeout, entering standby mode" {
		t.Errorf("en timeout = %q", got)
	}
	if got := Message("de", "order_success"); got != "Auftrag erfolgreich" {
		t.Errorf("de order_success = %q", got)
	}

	// Unknown language falls back to Turkish.
	if got := Message("fr", "listening"); got != "Dinliyorum" {
		t.Errorf("fallback language = %q", got)
	}

	// Unknown key falls back to the key itself.
	if got := Message("tr", "nope_key"); got != "nope_key" {
		t.Errorf("fallback key = %q", got)
	}
}

func TestCatalogueParity(t *testing.T) {
	// Every language must answer every key Turkish has.
	for key := range messages["tr"] {
		for _, lang := range []string{"en", "de"} {
			if _, ok := messages[lang][key]; !ok {
				t.Errorf("language %s missing key %s", lang, key)
			}
		}
	}
}
