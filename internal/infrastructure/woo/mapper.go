package woo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/medirec/backend/internal/domain"
)

// DefaultCategory is assigned when no mapping tier produces a category.
const DefaultCategory = "sprzet_diagnostyczny"

const noDescription = "Brak opisu"

// labelMapping pairs a store category label with an internal category.
type labelMapping struct {
	label    string
	category string
}

// categoryMappings maps store category labels to the internal vocabulary.
// The table is a slice, not a map: the partial and scored passes iterate
// it in definition order and that order decides ambiguous labels.
var categoryMappings = []labelMapping{
	// Sprzęt diagnostyczny
	{"stetoskopy", "sprzet_diagnostyczny"},
	{"ciśnieniomierze", "sprzet_diagnostyczny"},
	{"termometry", "sprzet_diagnostyczny"},
	{"pulsoksymetry", "sprzet_diagnostyczny"},
	{"spirometry", "sprzet_diagnostyczny"},
	{"otoskopy", "sprzet_diagnostyczny"},
	{"diagnostyka", "sprzet_diagnostyczny"},
	{"sprzęt diagnostyczny", "sprzet_diagnostyczny"},

	// Torby i walizki
	{"torby medyczne", "torby"},
	{"walizki ratownicze", "torby"},
	{"torby", "torby"},
	{"walizki", "torby"},

	// Higiena i ochrona osobista
	{"rękawice", "higiena"},
	{"rękawiczki", "higiena"},
	{"rękawiczki lateksowe", "higiena"},
	{"rękawiczki nitrylowe", "higiena"},
	{"rękawiczki winylowe", "higiena"},
	{"rękawiczki bezpudrowe", "higiena"},
	{"rękawiczki jałowe", "higiena"},
	{"maseczki", "higiena"},
	{"dezynfekcja", "higiena"},
	{"higiena", "higiena"},
	{"ochrona osobista", "higiena"},
	{"czepki", "higiena"},
	{"czepek", "higiena"},
	{"fartuchy", "higiena"},
	{"fartuch", "higiena"},
	{"ochraniacze", "higiena"},
	{"kapcie", "higiena"},
	{"czyściwo", "higiena"},
	{"ręcznik papierowy", "higiena"},
	{"płatki", "higiena"},
	{"waciki", "higiena"},
	{"płyn", "higiena"},
	{"płyny", "higiena"},

	// Diabetologia
	{"glukometry", "diabetologia"},
	{"paski testowe", "diabetologia"},
	{"lancety", "diabetologia"},
	{"insulina", "diabetologia"},
	{"diabetologia", "diabetologia"},
	{"cukrzyca", "diabetologia"},
	{"glukometr", "diabetologia"},
	{"glikemia", "diabetologia"},
	{"blood glucose", "diabetologia"},
	{"test glucose", "diabetologia"},

	// Suplementy i odżywki
	{"cartinorm", "wyposazenie"},
	{"witamina", "wyposazenie"},
	{"suplement", "wyposazenie"},
	{"kolagen", "wyposazenie"},
	{"tabletki", "wyposazenie"},
	{"kapsułki", "wyposazenie"},
	{"odżywka", "wyposazenie"},
	{"goodwill", "wyposazenie"},

	// Opatrunki i materiały opatrunkowe
	{"opatrunki", "opatrunki"},
	{"bandaże", "opatrunki"},
	{"gaza", "opatrunki"},
	{"plastry", "opatrunki"},
	{"materiały opatrunkowe", "opatrunki"},

	// Sprzęt ratowniczy
	{"defibrylatory", "sprzet_ratowniczy"},
	{"aspiratory", "sprzet_ratowniczy"},
	{"wózki ratownicze", "sprzet_ratowniczy"},
	{"sprzęt ratowniczy", "sprzet_ratowniczy"},
	{"ratownictwo", "sprzet_ratowniczy"},
	{"staza", "sprzet_ratowniczy"},
	{"aparaty", "sprzet_ratowniczy"},
	{"aparat", "sprzet_ratowniczy"},

	// Apteczki i pierwsza pomoc
	{"apteczki", "apteczki"},
	{"pierwsza pomoc", "apteczki"},
	{"zestawy ratownicze", "apteczki"},

	// Ortopedia i rehabilitacja
	{"ortopedia", "ortopedia"},
	{"stabilizatory", "ortopedia"},
	{"kołnierze", "ortopedia"},
	{"rehabilitacja", "ortopedia"},
	{"pończochy", "ortopedia"},
	{"uciskowe", "ortopedia"},

	// Narzędzia medyczne i chirurgiczne
	{"narzędzia chirurgiczne", "narzedzia"},
	{"nożyczki", "narzedzia"},
	{"pinzety", "narzedzia"},
	{"narzędzia", "narzedzia"},
	{"kaniula", "narzedzia"},
	{"aplikator", "narzedzia"},
	{"igły", "narzedzia"},

	// Materiały jednorazowe
	{"strzykawki", "materialy_jednorazowe"},
	{"materiały jednorazowe", "materialy_jednorazowe"},
	{"cewniki", "materialy_jednorazowe"},
	{"cewnik", "materialy_jednorazowe"},
	{"sonda", "materialy_jednorazowe"},
	{"sondy", "materialy_jednorazowe"},
	{"zgłębnik", "materialy_jednorazowe"},
	{"koszula", "materialy_jednorazowe"},
	{"koszule", "materialy_jednorazowe"},
	{"spódniczki", "materialy_jednorazowe"},
	{"ubranie operacyjne", "materialy_jednorazowe"},
	{"kranik", "materialy_jednorazowe"},
	{"przyrząd", "materialy_jednorazowe"},
	{"przedłużacz", "materialy_jednorazowe"},
	{"łącznik", "materialy_jednorazowe"},
	{"korek", "materialy_jednorazowe"},
	{"zatyczka", "materialy_jednorazowe"},
	{"pojemniki", "materialy_jednorazowe"},
	{"pojemnik", "materialy_jednorazowe"},
	{"worki", "materialy_jednorazowe"},
	{"worek", "materialy_jednorazowe"},
	{"rękaw", "materialy_jednorazowe"},
	{"rękawy", "materialy_jednorazowe"},
	{"paski", "materialy_jednorazowe"},
	{"testy", "materialy_jednorazowe"},
	{"test", "materialy_jednorazowe"},
	{"biologiczne", "materialy_jednorazowe"},
	{"sterylizacja", "materialy_jednorazowe"},
	{"jałowe", "materialy_jednorazowe"},
	{"niejałowe", "materialy_jednorazowe"},
	{"jednorazowe", "materialy_jednorazowe"},
	{"włóknina", "materialy_jednorazowe"},
	{"włókninowe", "materialy_jednorazowe"},
	{"sms", "materialy_jednorazowe"},
	{"foliowe", "materialy_jednorazowe"},
	{"papierowe", "materialy_jednorazowe"},
	{"papierowy", "materialy_jednorazowe"},

	// Wyposażenie
	{"lampy", "wyposazenie"},
	{"stoły", "wyposazenie"},
	{"wyposażenie", "wyposazenie"},
	{"woda destylowana", "wyposazenie"},
	{"woda", "wyposazenie"},
	{"destylowana", "wyposazenie"},

	// Urologia i produkty chłonne, prowadzone jako rehabilitacyjne
	{"urologia", "ortopedia"},
	{"urologiczne", "ortopedia"},
	{"wkładki", "ortopedia"},
	{"podkłady", "ortopedia"},
	{"pieluchomajtki", "ortopedia"},
	{"majtki chłonne", "ortopedia"},
	{"seni", "ortopedia"},
	{"refundacja nfz", "ortopedia"},
	{"refundacja", "ortopedia"},
	{"nfz", "ortopedia"},

	// Weterynaryjne
	{"weterynaryjna", "narzedzia"},
	{"weterynaryjne", "narzedzia"},
	{"kruuse", "narzedzia"},
	{"buster", "narzedzia"},
	{"zwierząt", "narzedzia"},
	{"zwierzęta", "narzedzia"},
}

// exactLabels indexes the mapping table for the exact pass.
var exactLabels = func() map[string]string {
	index := make(map[string]string, len(categoryMappings))
	for _, m := range categoryMappings {
		if _, ok := index[m.label]; !ok {
			index[m.label] = m.category
		}
	}
	return index
}()

var (
	htmlTagRegex   = regexp.MustCompile(`<.*?>`)
	priceHTMLRegex = regexp.MustCompile(`(\d+[.,]\d+)`)
)

// Mapper converts raw store products to internal Product entities.
type Mapper struct {
	logger *zap.Logger
}

// NewMapper creates a store product mapper.
func NewMapper(logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{logger: logger}
}

// MapProduct converts a single store product. Missing or invalid required
// fields (id, name, price) are errors.
func (m *Mapper) MapProduct(sp domain.StoreProduct) (domain.Product, error) {
	if sp.ID <= 0 {
		return domain.Product{}, fmt.Errorf("%w: invalid product id %d", domain.ErrValidation, sp.ID)
	}

	name := strings.TrimSpace(sp.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", domain.ErrValidation)
	}

	price, err := extractPrice(sp)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	description := extractDescription(sp)
	category := m.MapCategory(categoryLabels(sp), sp.Name, sp.Description)

	return domain.NewProduct(sp.ID, name, category, price, description)
}

// MapProducts converts a batch of store products. Invalid records are
// skipped and counted rather than failing the whole batch.
func (m *Mapper) MapProducts(storeProducts []domain.StoreProduct) []domain.Product {
	products := make([]domain.Product, 0, len(storeProducts))
	skipped := 0

	for _, sp := range storeProducts {
		product, err := m.MapProduct(sp)
		if err != nil {
			m.logger.Warn("skipping invalid store product",
				zap.Int("id", sp.ID),
				zap.Error(err),
			)
			skipped++
			continue
		}
		products = append(products, product)
	}

	if skipped > 0 {
		m.logger.Info("mapped store products",
			zap.Int("mapped", len(products)),
			zap.Int("skipped", skipped),
		)
	}
	return products
}

// MapCategory resolves store category labels to an internal category using
// three tiers: exact label lookup, mutual-substring match against the
// mapping table, then a scored scan of the product text. Tier order is
// load-bearing; the result always falls back to DefaultCategory.
func (m *Mapper) MapCategory(labels []string, name, description string) string {
	normalized := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label != "" {
			normalized = append(normalized, label)
		}
	}

	// Exact pass: first label with a direct table entry wins.
	for _, label := range normalized {
		if category, ok := exactLabels[label]; ok {
			return category
		}
	}

	// Partial pass: first mutual-substring hit in table order wins.
	for _, label := range normalized {
		for _, mapping := range categoryMappings {
			if strings.Contains(label, mapping.label) || strings.Contains(mapping.label, label) {
				return mapping.category
			}
		}
	}

	// Scored pass over the product text.
	if category, ok := m.scoreText(name, description); ok {
		return category
	}

	m.logger.Warn("no category mapping found, using default",
		zap.String("product", name),
	)
	return DefaultCategory
}

// scoreText scores every known label against the product text and keeps the
// best score per internal category. Whole-word hits score 10, prefix/suffix
// hits 8, bare substrings 5, plus 0.1 per label character as a specificity
// bonus. Ties resolve to the category that scored first.
func (m *Mapper) scoreText(name, description string) (string, bool) {
	text := strings.ToLower(name + " " + description)
	padded := " " + text + " "

	scores := make(map[string]float64)
	var order []string

	for _, mapping := range categoryMappings {
		label := mapping.label

		var score float64
		switch {
		case strings.Contains(padded, " "+label+" "):
			score = 10
		case strings.HasPrefix(text, label) || strings.HasSuffix(text, label):
			score = 8
		case strings.Contains(text, label):
			score = 5
		}
		if score == 0 {
			continue
		}
		score += 0.1 * float64(utf8.RuneCountInString(label))

		if _, seen := scores[mapping.category]; !seen {
			order = append(order, mapping.category)
		}
		if score > scores[mapping.category] {
			scores[mapping.category] = score
		}
	}

	if len(order) == 0 {
		return "", false
	}

	best := order[0]
	for _, category := range order[1:] {
		if scores[category] > scores[best] {
			best = category
		}
	}
	m.logger.Debug("category resolved from product text",
		zap.String("category", best),
		zap.Float64("score", scores[best]),
	)
	return best, true
}

func categoryLabels(sp domain.StoreProduct) []string {
	labels := make([]string, 0, len(sp.Categories))
	for _, c := range sp.Categories {
		labels = append(labels, c.Name)
	}
	return labels
}

// extractPrice tries the price fields in order of preference, then falls
// back to scraping a number out of the rendered price HTML.
func extractPrice(sp domain.StoreProduct) (float64, error) {
	for _, raw := range []string{sp.Price, sp.RegularPrice, sp.SalePrice} {
		if raw == "" {
			continue
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err == nil && price >= 0 {
			return price, nil
		}
	}

	if match := priceHTMLRegex.FindString(sp.PriceHTML); match != "" {
		price, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
		if err == nil && price >= 0 {
			return price, nil
		}
	}

	return 0, fmt.Errorf("no valid price found")
}

// extractDescription returns the first non-empty description field with
// HTML tags stripped, falling back to the product name.
func extractDescription(sp domain.StoreProduct) string {
	for _, raw := range []string{sp.Description, sp.ShortDescription, sp.Name} {
		cleaned := strings.TrimSpace(stripHTML(raw))
		if cleaned != "" {
			return cleaned
		}
	}
	return noDescription
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRegex.ReplaceAllString(s, ""))
}
