package parser

// Field canonical column name
type Field string

const (
	FieldIdentifier     Field = "identifier"
	FieldSite           Field = "site"
	FieldStatusFlag     Field = "status_flag"
	FieldName           Field = "name"
	FieldSKU            Field = "sku"
	FieldQuantity       Field = "quantity"
	FieldListedPrice    Field = "listed_price"
	FieldTitle          Field = "title"
	FieldReferencePrice Field = "reference_price"
	FieldLowestPrice    Field = "lowest_price"
	FieldAvg90Price     Field = "avg90_price"
	FieldHighestPrice   Field = "highest_price"
)

// FieldSpec canonical field with its accepted source headers, in priority order
type FieldSpec struct {
	Field    Field
	Required bool
	Aliases  []string
}

// Schema canonical target of one source kind
type Schema struct {
	Name   string
	Fields []FieldSpec
}

// InventorySchema Ready Pro inventory export
var InventorySchema = Schema{
	Name: "inventory",
	Fields: []FieldSpec{
		{Field: FieldIdentifier, Required: true, Aliases: []string{"Codice(ASIN)", "Cod.Barre", "ASIN"}},
		{Field: FieldSite, Aliases: []string{"Sito", "Site", "Marketplace"}},
		{Field: FieldStatusFlag, Aliases: []string{"Stato", "Status"}},
		{Field: FieldName, Required: true, Aliases: []string{"Descrizione sul marketplace", "Nome prodotto", "Descrizione", "Title"}},
		{Field: FieldSKU, Aliases: []string{"SKU", "Codice"}},
		{Field: FieldQuantity, Required: true, Aliases: []string{"Quantita'", "Quantità", "Quantita", "Qty"}},
		{Field: FieldListedPrice, Required: true, Aliases: []string{"Prezzo", "Prezzo di vendita attuale", "Price"}},
	},
}

// ReferenceSchema Keepa export. "Buy Box: Current" is the authoritative
// market price; the other price aliases are older export headers.
var ReferenceSchema = Schema{
	Name: "reference",
	Fields: []FieldSpec{
		{Field: FieldIdentifier, Required: true, Aliases: []string{"ASIN", "Codice(ASIN)"}},
		{Field: FieldSite, Aliases: []string{"Sito", "Site", "Locale"}},
		{Field: FieldTitle, Aliases: []string{"Title", "Nome prodotto"}},
		{Field: FieldReferencePrice, Required: true, Aliases: []string{"Buy Box: Current", "Buy Box 🚚: Current", "Prezzo attuale su Amazon", "Reference Price"}},
		{Field: FieldLowestPrice, Aliases: []string{"Buy Box: Lowest", "Prezzo minimo storico"}},
		{Field: FieldAvg90Price, Aliases: []string{"Buy Box: 90 days avg.", "Prezzo medio ultimi 90 giorni"}},
		{Field: FieldHighestPrice, Aliases: []string{"Buy Box: Highest", "Prezzo massimo storico"}},
	},
}
