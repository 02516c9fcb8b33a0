// Package schema holds the declarative shapes of every input document and
// validates decoded documents against them.
package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
)

func closed(s *openapi3.Schema) *openapi3.Schema {
	no := false
	s.AdditionalProperties = openapi3.AdditionalProperties{Has: &no}
	return s
}

func describe(s *openapi3.Schema, title, description string) *openapi3.Schema {
	s.Title = title
	s.Description = description
	return s
}

func str() *openapi3.Schema { return openapi3.NewStringSchema() }

func optional(s *openapi3.Schema) *openapi3.Schema { return s.WithNullable() }

func pattern(p string) *openapi3.Schema { return str().WithPattern(p) }

func postalCode() *openapi3.Schema {
	return openapi3.NewOneOfSchema(str(), openapi3.NewIntegerSchema().WithMin(0))
}

// Address is a postal address block.
func Address() *openapi3.Schema {
	return closed(openapi3.NewObjectSchema().
		WithProperty("name", str().WithMinLength(1)).
		WithProperty("extra", optional(str())).
		WithProperty("street", str()).
		WithProperty("zip", postalCode()).
		WithProperty("city", str()).
		WithProperty("country", optional(pattern(PatternCountry))).
		WithRequired([]string{"name", "street", "zip", "city"}))
}

// Config is the sender configuration document.
func Config() *openapi3.Schema {
	settings := closed(openapi3.NewObjectSchema().
		WithProperty("open_pdf_viewer", openapi3.NewBoolSchema()).
		WithProperty("open_mail_client", openapi3.NewBoolSchema()))

	tax := closed(openapi3.NewObjectSchema().
		WithProperty("number", pattern(PatternTaxNumber)).
		WithProperty("office", str()).
		WithRequired([]string{"number", "office"}))

	bank := closed(openapi3.NewObjectSchema().
		WithProperty("iban", pattern(PatternIBAN)).
		WithProperty("bic", pattern(PatternBIC)).
		WithProperty("bank_name", str()).
		WithRequired([]string{"iban", "bic", "bank_name"}))

	sender := closed(openapi3.NewObjectSchema().
		WithProperty("address", Address()).
		WithProperty("email", pattern(PatternEmail)).
		WithProperty("website", optional(pattern(PatternWebsite))).
		WithProperty("phone", optional(pattern(PatternPhone))).
		WithProperty("tax", tax).
		WithProperty("bank", bank).
		WithRequired([]string{"address", "email", "tax", "bank"}))

	invoice := closed(openapi3.NewObjectSchema().
		WithProperty("VAT", openapi3.NewIntegerSchema().WithEnum(0.0, 7.0, 19.0)).
		WithProperty("due_days", openapi3.NewIntegerSchema().WithMin(0)).
		WithRequired([]string{"VAT", "due_days"}))

	mail := closed(openapi3.NewObjectSchema().
		WithProperty("provider", str().WithEnum("thunderbird", "ses", "none")).
		WithProperty("region", optional(str())).
		WithProperty("bcc", optional(pattern(PatternEmail))))

	return describe(closed(openapi3.NewObjectSchema().
		WithProperty("settings", settings).
		WithProperty("sender", sender).
		WithProperty("invoice", invoice).
		WithProperty("mail", mail).
		WithRequired([]string{"settings", "sender", "invoice"})),
		"Config", "Sender identity, invoice defaults and launch settings.")
}

// Item is a single invoice line. A supplied total is accepted and ignored.
func Item() *openapi3.Schema {
	return closed(openapi3.NewObjectSchema().
		WithProperty("name", str().WithMinLength(1)).
		WithProperty("description", optional(str())).
		WithProperty("quantity", openapi3.NewIntegerSchema().WithMin(1)).
		WithProperty("unit", str().WithEnum("Stunde", "Stück", "Monat")).
		WithProperty("price", openapi3.NewFloat64Schema().WithMin(0)).
		WithProperty("total", optional(openapi3.NewFloat64Schema())).
		WithRequired([]string{"name"}))
}

// Invoice is a single invoice record.
func Invoice() *openapi3.Schema {
	date := pattern(PatternDate)
	return closed(openapi3.NewObjectSchema().
		WithProperty("customer_id", openapi3.NewIntegerSchema().WithMin(1)).
		WithProperty("invoice_id", optional(openapi3.NewIntegerSchema().WithMin(1))).
		WithProperty("invoice_number", optional(pattern(PatternNumber))).
		WithProperty("date", optional(date)).
		WithProperty("start_date", optional(pattern(PatternDate))).
		WithProperty("end_date", optional(pattern(PatternDate))).
		WithProperty("due_date", optional(pattern(PatternDate))).
		WithProperty("status", str().WithEnum("draft", "sent", "paid")).
		WithProperty("items", openapi3.NewArraySchema().WithItems(Item())).
		WithProperty("total", optional(openapi3.NewFloat64Schema())).
		WithRequired([]string{"customer_id", "items"}))
}

// Invoices is the complete invoices document.
func Invoices() *openapi3.Schema {
	return describe(closed(openapi3.NewObjectSchema().
		WithProperty("invoices", openapi3.NewArraySchema().WithItems(Invoice())).
		WithRequired([]string{"invoices"})),
		"Invoices", "A batch of invoice records processed in file order.")
}

// Envelope checks only the outer shape of an invoices document so that
// individual records can fail without rejecting the batch.
func Envelope() *openapi3.Schema {
	return closed(openapi3.NewObjectSchema().
		WithProperty("invoices", openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())).
		WithRequired([]string{"invoices"}))
}

// Customer is one registry row.
func Customer() *openapi3.Schema {
	return describe(closed(openapi3.NewObjectSchema().
		WithProperty("customer_id", openapi3.NewIntegerSchema().WithMin(1)).
		WithProperty("name", str().WithMinLength(1)).
		WithProperty("extra", optional(str())).
		WithProperty("street", optional(str())).
		WithProperty("zip", optional(postalCode())).
		WithProperty("city", str()).
		WithProperty("country", optional(pattern(PatternCountry))).
		WithProperty("email", pattern(PatternEmail)).
		WithProperty("phone", optional(pattern(PatternPhone))).
		WithProperty("website", optional(pattern(PatternWebsite))).
		WithRequired([]string{"customer_id", "name", "city", "email"})),
		"Customer", "An addressee in the customer registry.")
}

// Letter is the frontmatter of a letter document.
func Letter() *openapi3.Schema {
	location := closed(openapi3.NewObjectSchema().
		WithProperty("key", str()).
		WithProperty("value", openapi3.NewOneOfSchema(str(), openapi3.NewIntegerSchema())).
		WithRequired([]string{"key", "value"}))

	return describe(closed(openapi3.NewObjectSchema().
		WithProperty("recipient", Address()).
		WithProperty("location", openapi3.NewArraySchema().WithItems(location)).
		WithProperty("place", optional(str())).
		WithProperty("subject", str().WithMinLength(1)).
		WithProperty("opening", optional(str())).
		WithProperty("closing", optional(str())).
		WithRequired([]string{"recipient", "subject"})),
		"Letter", "Frontmatter of a markdown letter.")
}

// CV is a curriculum vitae document.
func CV() *openapi3.Schema {
	person := closed(openapi3.NewObjectSchema().
		WithProperty("title", str().WithMinLength(1)).
		WithProperty("image", optional(str())).
		WithProperty("birthday_place", optional(str())).
		WithRequired([]string{"title"}))

	social := closed(openapi3.NewObjectSchema().
		WithProperty("github", optional(str())).
		WithProperty("linkedin", optional(str())))

	// station is one entry of education, experience or projects; org names
	// the field holding the institution or company.
	station := func(org string) *openapi3.Schema {
		return closed(openapi3.NewObjectSchema().
			WithProperty("title", str().WithMinLength(1)).
			WithProperty("start_date", pattern(PatternDate)).
			WithProperty("end_date", optional(pattern(PatternDate))).
			WithProperty(org, str()).
			WithProperty("location", str()).
			WithProperty("description", str()).
			WithProperty("tags", optional(openapi3.NewArraySchema().WithItems(str()))).
			WithRequired([]string{"title", "start_date", org, "location", "description"}))
	}
	list := func(s *openapi3.Schema) *openapi3.Schema { return openapi3.NewArraySchema().WithItems(s) }

	return describe(closed(openapi3.NewObjectSchema().
		WithProperty("person", person).
		WithProperty("social", social).
		WithProperty("engagement", optional(str())).
		WithProperty("skills", list(str())).
		WithProperty("education", list(station("institution"))).
		WithProperty("experience", list(station("company"))).
		WithProperty("projects", list(station("institution"))).
		WithRequired([]string{"person", "education", "experience"})),
		"CV", "A curriculum vitae.")
}

// All returns every exported document schema keyed by file stem.
func All() map[string]*openapi3.Schema {
	return map[string]*openapi3.Schema{
		"config":   Config(),
		"invoices": Invoices(),
		"customer": Customer(),
		"letter":   Letter(),
		"cv":       CV(),
	}
}
