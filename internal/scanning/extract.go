package scanning

import (
	"regexp"
	"strconv"
	"strings"
)

// Prices outside (0, MaxPrice) are treated as OCR noise
const MaxPrice = 10000

var (
	decimalPattern = regexp.MustCompile(`\d+[.,]\d{1,2}`)
	integerPattern = regexp.MustCompile(`\d+`)
)

// ExtractPrices returns candidate prices found in text, decimal matches first
// and then bare integers. Integer matches that overlap an accepted decimal
// match are skipped, so "12,75" yields only 12.75 while "10000.50" yields 50.
func ExtractPrices(text string) []float64 {
	var prices []float64

	var accepted [][]int
	for _, loc := range decimalPattern.FindAllStringIndex(text, -1) {
		if v, ok := parsePrice(text[loc[0]:loc[1]]); ok {
			prices = append(prices, v)
			accepted = append(accepted, loc)
		}
	}

	for _, loc := range integerPattern.FindAllStringIndex(text, -1) {
		if overlaps(loc, accepted) {
			continue
		}
		if v, ok := parsePrice(text[loc[0]:loc[1]]); ok {
			prices = append(prices, v)
		}
	}
	return prices
}

func parsePrice(token string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, v > 0 && v < MaxPrice
}

func overlaps(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}

// firstPrice runs ExtractPrices over every observation in order and returns
// the first accepted candidate
func firstPrice(observations []Observation) (float64, bool) {
	for _, obs := range observations {
		if prices := ExtractPrices(obs.Text); len(prices) > 0 {
			return prices[0], true
		}
	}
	return 0, false
}
