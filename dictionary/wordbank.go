package dictionary

// wordBank is the built-in English → Malay word bank.
var wordBank = map[string]string{
	"hello":          "helo",
	"good morning":   "selamat pagi",
	"good afternoon": "selamat tengah hari",
	"good evening":   "selamat petang",
	"thank you":      "terima kasih",
	"yes":            "ya",
	"no":             "tidak",
	"water":          "air",
	"food":           "makanan",
	"friend":         "kawan",
	"car":            "kereta",
	"house":          "rumah",
	"book":           "buku",
	"money":          "wang",
	"love":           "cinta",
	"help":           "tolong",
	"sorry":          "maaf",
	"please":         "sila",
	"how are you":    "apa khabar",
	"goodbye":        "selamat tinggal",
}

// Builtin returns a fresh copy of the built-in word bank.
func Builtin() *Map {
	return FromPairs(wordBank, SourceBuiltin)
}
