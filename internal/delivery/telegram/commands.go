package telegram

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/infrastructure/parser"
)

type uploadRole int

const (
	roleUnknown uploadRole = iota
	roleInventory
	roleReference
)

// parseCaption "inventario" -> inventory; "keepa DE" / "keepa amazon.de" ->
// reference for site DE. Without caption the file name decides.
func parseCaption(caption, fileName string) (uploadRole, string) {
	words := strings.Fields(strings.ToLower(caption))
	if len(words) > 0 {
		switch words[0] {
		case "inventario", "inventory", "readypro", "ready-pro", "magazzino":
			return roleInventory, ""
		case "keepa", "riferimento", "reference", "amazon":
			site := ""
			if len(words) > 1 {
				site = parser.NormalizeSite(words[1])
			}
			return roleReference, site
		}
	}

	name := strings.ToLower(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	switch {
	case strings.Contains(name, "keepa"):
		return roleReference, ""
	case strings.Contains(name, "inventario"), strings.Contains(name, "readypro"), strings.Contains(name, "ready_pro"):
		return roleInventory, ""
	}
	return roleUnknown, ""
}

var acceptedExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xlsx": true,
}

func acceptedFile(name string) bool {
	return acceptedExtensions[strings.ToLower(filepath.Ext(name))]
}

// parseAmount "/offset 0,50" style argument; fallback when empty
func parseAmount(args string, fallback *decimal.Decimal) (decimal.Decimal, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		if fallback != nil {
			return *fallback, nil
		}
		return decimal.Zero, fmt.Errorf("importo mancante")
	}
	amount, err := parser.ParsePrice(args)
	if err != nil {
		return decimal.Zero, fmt.Errorf("importo non valido %q", args)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("l'importo non può essere negativo")
	}
	return amount, nil
}
