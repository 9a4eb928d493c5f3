package azampay

import "strings"

var providers = map[string]string{
	"tigo":     "Tigo",
	"airtel":   "Airtel",
	"halopesa": "Halopesa",
	"azampesa": "AzamPesa",
	"mpesa":    "Mpesa",
}

// NormalizeProvider maps a mobile network name onto AzamPay's spelling.
// Unknown names pass through unchanged.
func NormalizeProvider(name string) string {
	trimmed := strings.TrimSpace(name)
	if p, ok := providers[strings.ToLower(trimmed)]; ok {
		return p
	}
	return trimmed
}

// NormalizePhone converts local Tanzanian numbers to the 255 international form.
func NormalizePhone(phone string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	switch {
	case strings.HasPrefix(clean, "0"):
		return "255" + clean[1:]
	case strings.HasPrefix(clean, "+"):
		return clean[1:]
	}
	return clean
}
