package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseWeight interpreta pesos como "2,5%", "3" ou "1.5". Valores inválidos ou
// não positivos resultam em 0.
func ParseWeight(raw string) float64 {
	return ParseWeightOr(raw, 0)
}

// ParseWeightOr funciona como ParseWeight, mas devolve def quando o valor não
// é um número positivo.
func ParseWeightOr(raw string, def float64) float64 {
	value := strings.TrimSpace(raw)
	value = strings.TrimSpace(strings.TrimSuffix(value, "%"))
	value = strings.ReplaceAll(value, ",", ".")
	if value == "" || isHexFloat(value) {
		return def
	}

	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return def
	}
	return n
}

// isHexFloat detecta formas como "0x1p1", que a planilha não produz.
func isHexFloat(value string) bool {
	value = strings.TrimLeft(value, "+-")
	return len(value) > 1 && value[0] == '0' && (value[1] == 'x' || value[1] == 'X')
}

// FormatWeight grava o peso sem zeros à direita ("2.5", "3").
func FormatWeight(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
