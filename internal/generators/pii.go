package generators

import (
	"fmt"

	"github.com/google/uuid"
)

var (
	surrogateFirstNames = []string{"alex", "sam", "jordan", "casey", "taylor", "morgan", "riley", "quinn", "avery", "drew"}
	surrogateLastNames  = []string{"reed", "hayes", "brooks", "lane", "cole", "ford", "page", "wells", "stone", "burke"}
	surrogateCities     = []string{"Northfield", "Lakewood", "Ashford", "Riverton", "Fairview", "Brookside", "Hillcrest", "Westbrook"}
	surrogateCountries  = []string{"Freedonia", "Sylvania", "Osterlich", "Vespugia", "Zubrowka"}
)

// surrogate generates a fully synthetic value for a PII-tagged column. The
// values are deliberately fabricated: they never derive from training data,
// so a surrogate cell can never leak a real sensitive attribute.
func (s *StatisticalSynthesizer) surrogate(piiType string) string {
	switch piiType {
	case "email":
		return fmt.Sprintf("%s.%s@example.com",
			surrogateFirstNames[s.rng.Intn(len(surrogateFirstNames))],
			uuid.NewString()[:8])
	case "phone_number":
		return fmt.Sprintf("+1-555-%03d-%04d", s.rng.Intn(1000), s.rng.Intn(10000))
	case "ssn":
		// 900-999 area numbers are never issued.
		return fmt.Sprintf("9%02d-%02d-%04d", s.rng.Intn(100), s.rng.Intn(100), s.rng.Intn(10000))
	case "credit_card_number":
		return fmt.Sprintf("4000%012d", s.rng.Int63n(1000000000000))
	case "iban":
		return fmt.Sprintf("XX%02d%016d", s.rng.Intn(100), s.rng.Int63n(10000000000000000))
	case "address":
		return fmt.Sprintf("%d %s St", 1+s.rng.Intn(9999), title(surrogateLastNames[s.rng.Intn(len(surrogateLastNames))]))
	case "city":
		return surrogateCities[s.rng.Intn(len(surrogateCities))]
	case "country":
		return surrogateCountries[s.rng.Intn(len(surrogateCountries))]
	case "first_name":
		return title(surrogateFirstNames[s.rng.Intn(len(surrogateFirstNames))])
	case "last_name":
		return title(surrogateLastNames[s.rng.Intn(len(surrogateLastNames))])
	case "person_name":
		return fmt.Sprintf("%s %s",
			title(surrogateFirstNames[s.rng.Intn(len(surrogateFirstNames))]),
			title(surrogateLastNames[s.rng.Intn(len(surrogateLastNames))]))
	default:
		return uuid.NewString()
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
