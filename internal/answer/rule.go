// Package answer renders query results as conversational prose, either
// through the model or through a deterministic rule-based formatter that
// serves as the safety net when the model is unavailable.
package answer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopchat/shopchat/internal/store"
)

const (
	emptyResultsMessage = "I couldn't find any matching products or information based on your question."
	questionPreviewLen  = 30
)

// matcher inspects the result shape and either produces an answer or
// passes. Matchers run in fixed priority order and are all pure.
type matcher struct {
	name  string
	apply func(rows []store.Row) (string, bool)
}

var matchers = []matcher{
	{"count", matchCount},
	{"price_range", matchPriceRange},
	{"most_expensive", matchMostExpensive},
	{"cheapest", matchCheapest},
	{"stock", matchStock},
	{"products", matchProducts},
	{"categories", matchCategories},
	{"single_field", matchSingleField},
	{"single_row", matchSingleRow},
	{"row_list", matchRowList},
}

// FormatRules converts rows into prose without any model involvement. It
// never fails: unmatched shapes fall through to a generic answer built
// from the question, and any internal panic is swallowed into a plain
// result count.
func FormatRules(rows []store.Row, question string) (result string) {
	defer func() {
		if recover() != nil {
			result = fmt.Sprintf("I found %d results based on your question.", len(rows))
		}
	}()

	if len(rows) == 0 {
		return emptyResultsMessage
	}
	for _, m := range matchers {
		if text, ok := m.apply(rows); ok {
			return text
		}
	}
	return genericAnswer(rows, question)
}

func matchCount(rows []store.Row) (string, bool) {
	if len(rows) != 1 {
		return "", false
	}
	count, ok := rows[0]["count"]
	if !ok || count == nil {
		return "", false
	}
	value := formatValue(count)
	if value == "1" {
		return "There is 1 product available.", true
	}
	return fmt.Sprintf("There are %s products available.", value), true
}

func matchPriceRange(rows []store.Row) (string, bool) {
	if len(rows) != 1 {
		return "", false
	}
	min, hasMin := rows[0]["min_price"]
	max, hasMax := rows[0]["max_price"]
	if !hasMin || !hasMax || min == nil || max == nil {
		return "", false
	}
	return fmt.Sprintf("Products range in price from $%s to $%s.", formatValue(min), formatValue(max)), true
}

func matchMostExpensive(rows []store.Row) (string, bool) {
	if len(rows) != 1 {
		return "", false
	}
	title, hasTitle := rows[0]["title"]
	max, hasMax := rows[0]["max_price"]
	if !hasTitle || !hasMax || title == nil || max == nil {
		return "", false
	}
	return fmt.Sprintf("The most expensive product is the %s at $%s.", formatValue(title), formatValue(max)), true
}

func matchCheapest(rows []store.Row) (string, bool) {
	if len(rows) != 1 {
		return "", false
	}
	title, hasTitle := rows[0]["title"]
	min, hasMin := rows[0]["min_price"]
	if !hasTitle || !hasMin || title == nil || min == nil {
		return "", false
	}
	return fmt.Sprintf("The most affordable product is the %s at $%s.", formatValue(title), formatValue(min)), true
}

func matchProducts(rows []store.Row) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}
	if title, ok := rows[0]["title"]; !ok || title == nil {
		return "", false
	}

	if len(rows) == 1 {
		row := rows[0]
		answer := "I found the " + formatValue(row["title"])
		if price, ok := row["price"]; ok && price != nil {
			answer += " priced at $" + formatValue(price)
		}
		if description, ok := row["description"]; ok && description != nil {
			// just the first sentence
			short := strings.SplitN(formatValue(description), ".", 2)[0]
			answer += ". " + short + "."
		} else {
			answer += "."
		}
		return answer, true
	}

	titles := make([]string, 0, len(rows))
	for _, row := range rows {
		titles = append(titles, formatValue(row["title"]))
	}
	answer := fmt.Sprintf("I found %d products that match your search. ", len(rows))
	if len(titles) <= 5 {
		answer += "These include: " + strings.Join(titles, ", ") + "."
	} else {
		answer += "Some examples include: " + strings.Join(titles[:3], ", ") + ", and more."
	}
	return answer, true
}

func matchCategories(rows []store.Row) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}
	if name, ok := rows[0]["category_name"]; !ok || name == nil {
		return "", false
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, formatValue(row["category_name"]))
	}
	return "We have the following product categories: " + strings.Join(names, ", ") + ".", true
}

// matchStock handles stock-focused selections (title plus stock). Rows
// that also carry price or description are product detail, not stock
// listings, and fall through to matchProducts.
func matchStock(rows []store.Row) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}
	first := rows[0]
	stock, hasStock := first["stock"]
	title, hasTitle := first["title"]
	if !hasStock || !hasTitle || stock == nil || title == nil {
		return "", false
	}
	if _, ok := first["price"]; ok {
		return "", false
	}
	if _, ok := first["description"]; ok {
		return "", false
	}
	if len(rows) == 1 {
		return fmt.Sprintf("The %s currently has %s units in stock.", formatValue(title), formatValue(stock)), true
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("- %s: %s in stock", formatValue(row["title"]), formatValue(row["stock"])))
	}
	return "Here's the current stock information:\n\n" + strings.Join(lines, "\n"), true
}

func matchSingleField(rows []store.Row) (string, bool) {
	if len(rows) != 1 || len(rows[0]) != 1 {
		return "", false
	}
	for key, value := range rows[0] {
		label := strings.ReplaceAll(key, "_", " ")
		return fmt.Sprintf("The %s is %s.", label, formatValue(value)), true
	}
	return "", false
}

func matchSingleRow(rows []store.Row) (string, bool) {
	if len(rows) != 1 {
		return "", false
	}
	keys := sortedKeys(rows[0])
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		label := strings.ReplaceAll(key, "_", " ")
		lines = append(lines, fmt.Sprintf("- %s: %s", label, formatValue(rows[0][key])))
	}
	return "Here's what I found:\n\n" + strings.Join(lines, "\n"), true
}

func matchRowList(rows []store.Row) (string, bool) {
	if len(rows) < 2 {
		return "", false
	}
	shown := len(rows)
	if shown > 3 {
		shown = 3
	}
	answer := fmt.Sprintf("I found %d results. Here are the first %d:\n\n", len(rows), shown)
	lines := make([]string, 0, shown)
	for i := 0; i < shown; i++ {
		lines = append(lines, strconv.Itoa(i+1)+". "+primaryValue(rows[i]))
	}
	answer += strings.Join(lines, "\n")
	if len(rows) > 3 {
		answer += fmt.Sprintf("\n\nAnd %d more...", len(rows)-3)
	}
	return answer, true
}

func genericAnswer(rows []store.Row, question string) string {
	preview := question
	if len(preview) > questionPreviewLen {
		preview = preview[:questionPreviewLen]
	}
	verb, noun := "are", "results"
	if len(rows) == 1 {
		verb, noun = "is", "result"
	}
	return fmt.Sprintf("I found some information based on your question about %q. There %s %d %s.",
		preview+"...", verb, len(rows), noun)
}

// primaryValue picks the most identifying field of a row: title or name
// when present, otherwise the first non-empty value in sorted key order.
func primaryValue(row store.Row) string {
	for _, key := range []string{"title", "name"} {
		if value, ok := row[key]; ok && value != nil {
			return formatValue(value)
		}
	}
	for _, key := range sortedKeys(row) {
		if value := row[key]; value != nil {
			return formatValue(value)
		}
	}
	return ""
}

func sortedKeys(row store.Row) []string {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(value any) string {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", value)
}
