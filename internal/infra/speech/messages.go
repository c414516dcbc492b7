// Package speech holds the host-side speech capabilities: the spoken
// feedback catalogue and stand-in transcriber/audio implementations for
// deployments without a microphone or TTS engine.
package speech

// Spoken feedback lines by language and message key.
var messages = map[string]map[string]string{
	"tr": {
		"listening":        "Dinliyorum",
		"processing":       "İşleniyor",
		"command_received": "Komut alındı",
		"order_success":    "İşlem başarılı",
		"order_failed":     "İşlem başarısız",
		"not_understood":   "Anlayamadım, tekrar söyler misiniz?",
		"wake_detected":    "Evet, dinliyorum",
		"timeout":          "Zaman aşımı, bekleme moduna geçiyorum",
		"error":            "Bir hata oluştu",
		"buy":              "Alış emri verildi",
		"sell":             "Satış emri verildi",
		"position_opened":  "Pozisyon açıldı",
		"position_closed":  "Pozisyon kapatıldı",
		"invalid_amount":   "Geçersiz miktar",
		"invalid_symbol":   "Geçersiz sembol",
		"confirm_order":    "Emri onaylıyor musunuz?",
		"cancelled":        "İptal edildi",
	},
	"en": {
		"listening":        "Listening",
		"processing":       "Processing",
		"command_received": "Command received",
		"order_success":    "Order successful",
		"order_failed":     "Order failed",
		"not_understood":   "I did not understand, could you repeat?",
		"wake_detected":    "Yes, listening",
		"timeout":          "Timeout, entering standby mode",
		"error":            "An error occurred",
		"buy":              "Buy order placed",
		"sell":             "Sell order placed",
		"position_opened":  "Position opened",
		"position_closed":  "Position closed",
		"invalid_amount":   "Invalid amount",
		"invalid_symbol":   "Invalid symbol",
		"confirm_order":    "Do you confirm the order?",
		"cancelled":        "Cancelled",
	},
	"de": {
		"listening":        "Höre zu",
		"processing":       "Verarbeitung",
		"command_received": "Befehl empfangen",
		"order_success":    "Auftrag erfolgreich",
		"order_failed":     "Auftrag fehlgeschlagen",
		"not_understood":   "Nicht verstanden, wiederholen Sie bitte?",
		"wake_detected":    "Ja, ich höre",
		"timeout":          "Zeitüberschreitung, wechsle in Standby",
		"error":            "Ein Fehler ist aufgetreten",
		"buy":              "Kaufauftrag erteilt",
		"sell":             "Verkaufsauftrag erteilt",
		"position_opened":  "Position eröffnet",
		"position_closed":  "Position geschlossen",
		"invalid_amount":   "Ungültiger Betrag",
		"invalid_symbol":   "Ungültiges Symbol",
		"confirm_order":    "Bestätigen Sie den Auftrag?",
		"cancelled":        "Abgebrochen",
	},
}

// Message resolves a message key for a language; Turkish is the fallback
// language, and an unknown key falls back to the key itself so a typo is
// audible rather than silent.
func Message(language, key string) string {
	table, ok := messages[language]
	if !ok {
		table = messages["tr"]
	}
	if text, ok := table[key]; ok {
		return text
	}
	return key
}
