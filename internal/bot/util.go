package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/extraction"
	"github.com/cupitman9/finanzas-bot/internal/model"
	"github.com/cupitman9/finanzas-bot/internal/session"
)

const (
	fechaLayout    = "02-01-2006"
	maxDescripcion = 255
)

var fechaPattern = regexp.MustCompile(`^(\d{2})([-./])(\d{2})([-./])(\d{4})$`)

var maxMonto = decimal.NewFromFloat(model.MaxMonto)

// parseMonto accepts a positive amount up to model.MaxMonto with either decimal separator, rounded to cents.
func parseMonto(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	d = d.Round(2)
	if !d.IsPositive() || d.GreaterThan(maxMonto) {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// parseFecha validates a real DD-MM-YYYY date and returns it with '-' separators.
func parseFecha(s string) (string, time.Time, bool) {
	m := fechaPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || m[2] != m[4] {
		return "", time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[3])
	year, _ := strconv.Atoi(m[5])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return "", time.Time{}, false
	}
	return t.Format(fechaLayout), t, true
}

// draftFrom keeps only the extracted values that pass the same checks as manual input.
func draftFrom(res *extraction.Result) session.Draft {
	var d session.Draft
	if res == nil {
		return d
	}
	if res.Monto != nil {
		if v, ok := parseMonto(strconv.FormatFloat(*res.Monto, 'f', -1, 64)); ok {
			d.Monto = &v
		}
	}
	if f, _, ok := parseFecha(res.Fecha); ok {
		d.Fecha = f
	}
	d.Categoria = cleanText(res.Categoria)
	d.Descripcion = cleanText(res.Descripcion)
	return d
}

// cleanText trims s and cuts it to maxDescripcion runes.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxDescripcion {
		s = strings.TrimSpace(string(r[:maxDescripcion]))
	}
	return s
}

func formatDraft(title string, d session.Draft) string {
	monto := "—"
	if d.Monto != nil {
		monto = fmt.Sprintf("$%.2f", *d.Monto)
	}
	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	sb.WriteString("💰 Monto: " + monto + "\n")
	sb.WriteString("📅 Fecha: " + orDash(d.Fecha) + "\n")
	sb.WriteString("🏷️ Categoría: " + orDash(d.Categoria) + "\n")
	sb.WriteString("📝 Descripción: " + orDash(d.Descripcion))
	return sb.String()
}

func formatMissing(fields []session.Field) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, fieldLabels[f])
	}
	return msgMissingFields + strings.Join(names, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func isNotFound(err error) bool {
	return apperr.IsNotFound(err)
}
