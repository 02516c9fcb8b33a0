package schema

// Patterns shared by the document schemas and the typed constructors.
const (
	PatternDate    = `^\d{4}-\d{2}-\d{2}$`
	PatternEmail   = `^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`
	PatternPhone   = `^\+?\d{1,3} ?\d{3} ?\d{6,8}$`
	PatternWebsite = `^(http(s)?://)?[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`
	PatternIBAN    = `^[A-Z]{2}\d{2}\s(\d{4}\s){4}\d{2}$|^[A-Z]{2}\d{20}$`
	PatternBIC     = `^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`
	PatternCountry = `^(DE|Germany|Deutschland)$`
	PatternNumber  = `^RE\d{4,}$`

	// Steuernummer in state (12/345/67890) or unified 13-digit form, or a VAT id.
	PatternTaxNumber = `^(\d{2,3}/\d{3,4}/\d{4,5}|\d{10,13}|DE\d{9})$`
)
