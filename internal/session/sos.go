package session

import "github.com/tariften/kitchenpilot/internal/domain"

// Canned kitchen-rescue answers, spoken in Turkish like the rest of the
// session. The thinking delay before delivering one is cosmetic; the
// answers are local and never leave the process.
var sosRemedies = map[domain.SOSCategory]string{
	domain.SOSBurnt:  "Tencereyi hemen ocaktan al ve dibi tutmayan kısımları başka bir kaba aktar. İçine yarım dilim ekmek koyup kapağı kapat, yanık kokusunu alacaktır.",
	domain.SOSSalty:  "Yemeğe bir adet soyulmuş bütün patates at ve biraz daha pişir. Patates fazla tuzu emecektir.",
	domain.SOSWatery: "Kapağı aç ve yüksek ateşte suyunu çektir. Veya ayrı bir yerde biraz nişastayı suyla açıp yemeğe ekle.",
	domain.SOSOther:  "Eksik malzeme için alternatifler: Krema yerine yoğurt ve un, yumurta yerine muz veya keten tohumu jeli kullanabilirsiniz.",
}

// Remedy returns the canned answer for a category. Unknown categories get
// the generic substitution advice.
func Remedy(category domain.SOSCategory) string {
	if r, ok := sosRemedies[category]; ok {
		return r
	}
	return sosRemedies[domain.SOSOther]
}
