// Package refdata holds the static EGX reference tables: company name to
// symbol mappings and last-resort P/E figures. The Catalog is built once
// at process start and injected — it is never mutated afterwards.
package refdata

import "strings"

// Catalog is the immutable reference data container.
type Catalog struct {
	nameBySymbol map[string]string
	symbolByName map[string]string
	peBySymbol   map[string]float64
}

// companies maps EGX ticker symbols to company names.
var companies = map[string]string{
	"COMI": "Commercial International Bank",
	"HRHO": "EFG Holding",
	"TMGH": "Talaat Moustafa Group Holding",
	"SWDY": "Elsewedy Electric",
	"EAST": "Eastern Company",
	"ETEL": "Telecom Egypt",
	"EFIH": "e-finance for Digital and Financial Investments",
	"ABUK": "Abu Qir Fertilizers and Chemical Industries",
	"MFPC": "Misr Fertilizers Production Company",
	"ORAS": "Orascom Construction",
	"AMOC": "Alexandria Mineral Oils Company",
	"SKPC": "Sidi Kerir Petrochemicals",
	"ESRS": "Ezz Steel",
	"EKHO": "Egypt Kuwait Holding",
	"ADIB": "Abu Dhabi Islamic Bank Egypt",
	"CIEB": "Credit Agricole Egypt",
	"FWRY": "Fawry for Banking Technology and Electronic Payments",
	"ORWE": "Oriental Weavers",
	"JUFO": "Juhayna Food Industries",
	"EFID": "Edita Food Industries",
	"ISPH": "Ibnsina Pharma",
	"CLHO": "Cleopatra Hospitals Group",
	"PHDC": "Palm Hills Developments",
	"OCDI": "SODIC",
	"MNHD": "Madinet Masr for Housing and Development",
	"HELI": "Heliopolis Housing and Development",
	"GBCO": "GB Corp",
	"AUTO": "GB Auto",
	"SUGR": "Delta Sugar",
	"EGTS": "Egyptian for Tourism Resorts",
}

// staticPE carries sector-typical trailing P/E figures used as the
// final fundamentals tier when every live provider comes back empty.
var staticPE = map[string]float64{
	"COMI": 6.8,
	"HRHO": 7.5,
	"TMGH": 9.2,
	"SWDY": 8.4,
	"EAST": 10.1,
	"ETEL": 5.9,
	"EFIH": 18.3,
	"ABUK": 7.0,
	"MFPC": 6.2,
	"ORAS": 5.4,
	"AMOC": 6.6,
	"SKPC": 8.9,
	"ESRS": 4.8,
	"EKHO": 7.7,
	"FWRY": 32.5,
	"ORWE": 7.3,
	"JUFO": 11.4,
	"EFID": 13.8,
	"CLHO": 15.2,
	"PHDC": 6.1,
	"OCDI": 6.9,
	"MNHD": 7.8,
	"AUTO": 5.5,
}

// NewCatalog builds the immutable catalog.
func NewCatalog() *Catalog {
	c := &Catalog{
		nameBySymbol: make(map[string]string, len(companies)),
		symbolByName: make(map[string]string, len(companies)),
		peBySymbol:   make(map[string]float64, len(staticPE)),
	}
	for sym, name := range companies {
		c.nameBySymbol[sym] = name
		c.symbolByName[strings.ToLower(name)] = sym
	}
	for sym, pe := range staticPE {
		c.peBySymbol[sym] = pe
	}
	return c
}

// CompanyName returns the company name for an EGX symbol.
func (c *Catalog) CompanyName(symbol string) (string, bool) {
	name, ok := c.nameBySymbol[strings.ToUpper(symbol)]
	return name, ok
}

// SymbolForName returns the EGX symbol for a company name
// (case-insensitive exact match).
func (c *Catalog) SymbolForName(name string) (string, bool) {
	sym, ok := c.symbolByName[strings.ToLower(strings.TrimSpace(name))]
	return sym, ok
}

// StaticPE returns the static P/E figure for a symbol, if one is known.
func (c *Catalog) StaticPE(symbol string) (float64, bool) {
	pe, ok := c.peBySymbol[strings.ToUpper(symbol)]
	return pe, ok
}

// Symbols returns all known EGX symbols.
func (c *Catalog) Symbols() []string {
	out := make([]string, 0, len(c.nameBySymbol))
	for sym := range c.nameBySymbol {
		out = append(out, sym)
	}
	return out
}
