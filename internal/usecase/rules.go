package usecase

import "github.com/medirec/backend/internal/domain"

// Rules returns the static recommendation rule set mapping user input
// (professions, health conditions) to internal product categories.
// Loaded once at startup; callers must not mutate the returned slice.
func Rules() []domain.RecommendationRule {
	return []domain.RecommendationRule{
		{
			Keywords:    []string{"ratownik", "paramedyk", "karetka", "pogotowie", "ambulans"},
			Categories:  []string{"sprzet_ratowniczy", "torby", "sprzet_diagnostyczny", "apteczki"},
			Weight:      1.0,
			Description: "Sprzęt dla ratowników medycznych i zespołów pogotowia",
		},
		{
			Keywords:    []string{"lekarz", "doktor", "dr", "physician", "medyk"},
			Categories:  []string{"sprzet_diagnostyczny", "torby", "narzedzia", "wyposazenie"},
			Weight:      1.0,
			Description: "Sprzęt diagnostyczny i narzędzia dla lekarzy",
		},
		{
			Keywords:    []string{"pielęgniarka", "pielęgniarz", "nurse"},
			Categories:  []string{"higiena", "materialy_jednorazowe", "opatrunki", "sprzet_diagnostyczny"},
			Weight:      0.9,
			Description: "Materiały jednorazowe i sprzęt dla pielęgniarek",
		},
		{
			Keywords:    []string{"fizjoterapeuta", "rehabilitant", "physiotherapist"},
			Categories:  []string{"ortopedia", "wyposazenie"},
			Weight:      0.8,
			Description: "Sprzęt ortopedyczny i rehabilitacyjny",
		},
		{
			Keywords:    []string{"cukrzyca", "diabetes", "diabetyk", "insulina", "glukoza", "cukier"},
			Categories:  []string{"diabetologia"},
			Weight:      1.0,
			Description: "Produkty do kontroli i leczenia cukrzycy",
		},
		{
			Keywords:    []string{"serce", "kardiologia", "nadciśnienie", "ciśnienie", "arytmia", "cardio"},
			Categories:  []string{"sprzet_diagnostyczny"},
			Weight:      0.9,
			Description: "Sprzęt do badań kardiologicznych i kontroli ciśnienia",
		},
		{
			Keywords:    []string{"astma", "COPD", "oddychanie", "płuca", "spirometria", "kaszel"},
			Categories:  []string{"sprzet_diagnostyczny"},
			Weight:      0.9,
			Description: "Sprzęt do badania funkcji oddechowych",
		},
		{
			Keywords:    []string{"rana", "uraz", "skaleczenie", "oparzenie", "bandaż", "opatrunek"},
			Categories:  []string{"opatrunki", "materialy_jednorazowe"},
			Weight:      0.8,
			Description: "Materiały do opatrywania ran i urazów",
		},
		{
			Keywords:    []string{"higiena", "dezynfekcja", "sterylizacja", "czystość", "profilaktyka"},
			Categories:  []string{"higiena", "materialy_jednorazowe"},
			Weight:      0.7,
			Description: "Produkty higieniczne i do dezynfekcji",
		},
		{
			Keywords:    []string{"badanie", "diagnoza", "pomiar", "test", "kontrola", "monitoring"},
			Categories:  []string{"sprzet_diagnostyczny"},
			Weight:      0.8,
			Description: "Sprzęt do badań i diagnostyki medycznej",
		},
		{
			Keywords:    []string{"pierwsza pomoc", "apteczka", "nagły wypadek", "ratownictwo"},
			Categories:  []string{"apteczki", "opatrunki", "materialy_jednorazowe"},
			Weight:      0.9,
			Description: "Wyposażenie do udzielania pierwszej pomocy",
		},
		{
			Keywords:    []string{"kręgosłup", "stawy", "ortopedia", "rehabilitacja", "stabilizacja"},
			Categories:  []string{"ortopedia"},
			Weight:      0.8,
			Description: "Sprzęt ortopedyczny i stabilizujący",
		},
		{
			Keywords:    []string{"dentysta", "stomatolog", "zęby", "dental"},
			Categories:  []string{"narzedzia", "higiena"},
			Weight:      0.7,
			Description: "Narzędzia i materiały stomatologiczne",
		},
		{
			Keywords:    []string{"szpital", "klinika", "przychodnia", "gabinet"},
			Categories:  []string{"sprzet_diagnostyczny", "higiena", "wyposazenie"},
			Weight:      0.6,
			Description: "Podstawowe wyposażenie placówek medycznych",
		},
	}
}

// CategoriesByPriority returns the internal categories ordered by general
// importance and frequency of use.
func CategoriesByPriority() []string {
	return []string{
		"sprzet_diagnostyczny",
		"higiena",
		"opatrunki",
		"materialy_jednorazowe",
		"torby",
		"apteczki",
		"diabetologia",
		"sprzet_ratowniczy",
		"narzedzia",
		"wyposazenie",
		"ortopedia",
	}
}

// FallbackCategories returns the general categories used when no rule
// matches a query.
func FallbackCategories() []string {
	return []string{
		"sprzet_diagnostyczny",
		"higiena",
		"apteczki",
	}
}
