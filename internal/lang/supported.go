package lang

import "strings"

// shortCodes maps the two-letter codes the application accepts to the
// canonical codes of the model table. This is deliberately narrower than
// the full table: it lists only the languages the application has been
// validated against.
var shortCodes = map[string]string{
	"af": "afr_Latn",
	"ar": "arb_Arab",
	"az": "azj_Latn",
	"be": "bel_Cyrl",
	"bg": "bul_Cyrl",
	"bn": "ben_Beng",
	"bs": "bos_Latn",
	"ca": "cat_Latn",
	"cs": "ces_Latn",
	"cy": "cym_Latn",
	"da": "dan_Latn",
	"de": "deu_Latn",
	"el": "ell_Grek",
	"en": "eng_Latn",
	"es": "spa_Latn",
	"et": "est_Latn",
	"eu": "eus_Latn",
	"fa": "pes_Arab",
	"fi": "fin_Latn",
	"fr": "fra_Latn",
	"ga": "gle_Latn",
	"gl": "glg_Latn",
	"he": "heb_Hebr",
	"hi": "hin_Deva",
	"hr": "hrv_Latn",
	"hu": "hun_Latn",
	"hy": "hye_Armn",
	"id": "ind_Latn",
	"is": "isl_Latn",
	"it": "ita_Latn",
	"ja": "jpn_Jpan",
	"ka": "kat_Geor",
	"kk": "kaz_Cyrl",
	"ko": "kor_Hang",
	"lt": "lit_Latn",
	"lv": "lvs_Latn",
	"mk": "mkd_Cyrl",
	"ms": "zsm_Latn",
	"mt": "mlt_Latn",
	"nl": "nld_Latn",
	"no": "nob_Latn",
	"pl": "pol_Latn",
	"pt": "por_Latn",
	"ro": "ron_Latn",
	"ru": "rus_Cyrl",
	"sk": "slk_Latn",
	"sl": "slv_Latn",
	"sq": "als_Latn",
	"sr": "srp_Cyrl",
	"sv": "swe_Latn",
	"sw": "swh_Latn",
	"ta": "tam_Taml",
	"te": "tel_Telu",
	"th": "tha_Thai",
	"tl": "tgl_Latn",
	"tr": "tur_Latn",
	"uk": "ukr_Cyrl",
	"ur": "urd_Arab",
	"vi": "vie_Latn",
	"zh": "zho_Hans",
}

// Resolve normalizes a user-supplied language code to a canonical table
// code. It accepts canonical codes as-is and short codes via the
// supported-language mapping.
func Resolve(code string) (string, error) {
	if code == "" {
		return "", &UnsupportedLanguageError{Code: code}
	}
	if strings.Contains(code, "_") {
		return code, nil
	}
	canonical, ok := shortCodes[strings.ToLower(code)]
	if !ok {
		return "", &UnsupportedLanguageError{Code: code}
	}
	return canonical, nil
}

// Supported reports whether a code resolves to a language in the table.
func Supported(code string) bool {
	canonical, err := Resolve(code)
	if err != nil {
		return false
	}
	for _, c := range Codes {
		if c == canonical {
			return true
		}
	}
	return false
}
