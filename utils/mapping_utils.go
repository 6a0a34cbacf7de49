package utils

import (
	"strings"
)

// NormalizeSize normalizes size labels: Small -> S, Extra Large -> XL.
// Numeric and unknown sizes are returned trimmed and uppercased.
func NormalizeSize(size string) string {
	sizeUpper := strings.ToUpper(strings.TrimSpace(size))
	sizeUpper = strings.Join(strings.Fields(strings.ReplaceAll(sizeUpper, "-", " ")), " ")

	switch sizeUpper {
	case "EXTRA SMALL", "X SMALL", "XS":
		return "XS"
	case "SMALL", "S", "PEQUEÑA", "PEQUEÑO":
		return "S"
	case "MEDIUM", "M", "MEDIANA", "MEDIANO":
		return "M"
	case "LARGE", "L", "GRANDE":
		return "L"
	case "EXTRA LARGE", "X LARGE", "XL":
		return "XL"
	case "XX LARGE", "XXL", "2XL":
		return "XXL"
	}
	return sizeUpper
}

// MapColorToName maps color names and their Spanish labels to one
// canonical lowercase English name so filters match either spelling.
// Unknown colors are returned trimmed and lowercased.
func MapColorToName(color string) string {
	colorLower := strings.Join(strings.Fields(strings.ToLower(color)), " ")

	colorMap := map[string]string{
		"amarillo":      "yellow",
		"azul":          "blue",
		"azul cielo":    "light blue",
		"azul petróleo": "teal",
		"azul oscuro":   "navy",
		"blanco":        "white",
		"café":          "brown",
		"marrón":        "brown",
		"tabaco":        "tan",
		"beige":         "beige",
		"fucsia":        "fuchsia",
		"gris":          "gray",
		"grey":          "gray",
		"gris jaspeado": "heather gray",
		"morado":        "purple",
		"naranja":       "orange",
		"negro":         "black",
		"palo de rosa":  "dusty pink",
		"rosa claro":    "light pink",
		"rosado":        "pink",
		"rojo":          "red",
		"verde":         "green",
		"verde limón":   "lime",
		"verde militar": "olive",
	}

	if name, exists := colorMap[colorLower]; exists {
		return name
	}
	return colorLower
}

// MapCategory maps category labels and common garment names to one of the
// wardrobe categories. Unknown labels are returned lowercased so callers
// can reject them.
func MapCategory(category string) string {
	categoryLower := strings.Join(strings.Fields(strings.ToLower(category)), " ")

	categoryMap := map[string]string{
		"tops":        "top",
		"shirt":       "top",
		"t-shirt":     "top",
		"camiseta":    "top",
		"camisa":      "top",
		"blusa":       "top",
		"buso":        "top",
		"bottoms":     "bottom",
		"pants":       "bottom",
		"jeans":       "bottom",
		"skirt":       "bottom",
		"pantalón":    "bottom",
		"falda":       "bottom",
		"shoe":        "shoes",
		"zapatos":     "shoes",
		"tenis":       "shoes",
		"jacket":      "outerwear",
		"coat":        "outerwear",
		"chaqueta":    "outerwear",
		"impermeable": "outerwear",
		"accessories": "accessory",
		"pañoleta":    "accessory",
		"gorra":       "accessory",
		"otro":        "other",
	}

	if mapped, exists := categoryMap[categoryLower]; exists {
		return mapped
	}
	return categoryLower
}
