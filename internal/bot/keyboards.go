package bot

import (
	"gopkg.in/telebot.v3"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

const (
	cbConfirm         = "confirmar"
	cbEdit            = "editar"
	cbCancel          = "cancelar"
	cbEditMonto       = "editar_monto"
	cbEditFecha       = "editar_fecha"
	cbEditCategoria   = "editar_categoria"
	cbEditDescripcion = "editar_descripcion"
	cbConfirmEdit     = "confirmar_edicion"
	cbCancelEdit      = "cancelar_edicion"
	cbSelectCategory  = "select_cat"
)

func draftKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("✅ Confirmar", cbConfirm),
		markup.Data("✏️ Editar", cbEdit),
		markup.Data("❌ Cancelar", cbCancel),
	))
	return markup
}

func editKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("💰 Monto", cbEditMonto), markup.Data("📅 Fecha", cbEditFecha)),
		markup.Row(markup.Data("🏷️ Categoría", cbEditCategoria), markup.Data("📝 Descripción", cbEditDescripcion)),
		markup.Row(markup.Data("✅ Confirmar Cambios", cbConfirmEdit), markup.Data("↩️ Cancelar Edición", cbCancelEdit)),
	)
	return markup
}

// categoryKeyboard lays the categories out two per row. Buttons carry the category id
// because Telegram caps callback data at 64 bytes.
func categoryKeyboard(categories []model.Category) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	var row telebot.Row
	for i, c := range categories {
		row = append(row, markup.Data(c.Nombre, cbSelectCategory+":"+c.ID.String()))
		if (i+1)%2 == 0 || i == len(categories)-1 {
			rows = append(rows, row)
			row = telebot.Row{}
		}
	}
	markup.Inline(rows...)
	return markup
}

func contactKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	markup.Reply(markup.Row(markup.Contact("📱 Compartir teléfono")))
	return markup
}
