package extraction

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Result holds the fields the model managed to extract. Empty means not found.
type Result struct {
	Monto       *float64
	Fecha       string
	Categoria   string
	Descripcion string
}

func (r *Result) Empty() bool {
	return r == nil || (r.Monto == nil && r.Fecha == "" && r.Categoria == "" && r.Descripcion == "")
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

type rawResult struct {
	Monto       json.RawMessage `json:"monto"`
	Fecha       *string         `json:"fecha"`
	Categoria   *string         `json:"categoria"`
	Descripcion *string         `json:"descripcion"`
}

// parseResult reads a fenced JSON block, or the whole text when there is none.
// Anything unreadable yields nil.
func parseResult(text string) *Result {
	payload := strings.TrimSpace(text)
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		payload = m[1]
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil
	}

	res := &Result{Monto: parseAmount(raw.Monto)}
	if raw.Fecha != nil {
		res.Fecha = strings.TrimSpace(*raw.Fecha)
	}
	if raw.Categoria != nil {
		res.Categoria = strings.TrimSpace(*raw.Categoria)
	}
	if raw.Descripcion != nil {
		res.Descripcion = strings.TrimSpace(*raw.Descripcion)
	}
	return res
}

// parseAmount accepts a JSON number or a numeric string such as "25,50".
func parseAmount(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n <= 0 {
			return nil
		}
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
