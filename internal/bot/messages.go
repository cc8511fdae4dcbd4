package bot

import "github.com/cupitman9/finanzas-bot/internal/session"

const (
	msgWelcome = "¡Hola %s! Contame un gasto por texto, con una foto del ticket o con un audio y lo cargo por vos."
	msgHelp    = "Comandos:\n" +
		"/start - vincular tu cuenta\n" +
		"/cancelar - descartar el borrador actual\n" +
		"/help - mostrar esta ayuda\n\n" +
		"Para registrar un gasto mandá un mensaje como \"Compré comida por $25 el 1 de agosto\", " +
		"una foto del ticket o un audio."
	msgNotLinked      = "No encontré tu cuenta. Compartí tu número de teléfono para vincularla."
	msgLinked         = "¡Listo %s! Tu cuenta quedó vinculada."
	msgLinkFailed     = "No encontré una cuenta registrada con ese teléfono."
	msgForeignContact = "Compartí tu propio contacto para vincular la cuenta."
	msgError          = "Ups, algo salió mal. Probá de nuevo en un momento."
	msgUseMenu        = "Estás editando un borrador. Usá los botones del menú."
	msgNoDraft        = "No hay ningún borrador activo."
	msgDraftTitle     = "🧾 Borrador de gasto"
	msgEditTitle      = "✏️ Editando borrador"
	msgConfirmedTitle = "✅ Gasto confirmado"
	msgCancelledTitle = "❌ Borrador cancelado"
	msgSaved          = "Gasto registrado en la billetera %s."
	msgCancelled      = "Borrador descartado."
	msgMissingFields  = "Faltan completar: "
	msgAskMonto       = "Ingresá el monto (por ejemplo 15.50):"
	msgAskFecha       = "Ingresá la fecha con formato DD-MM-YYYY:"
	msgAskDescripcion = "Ingresá la descripción:"
	msgAskCategoria   = "Elegí una categoría:"
	msgBadMonto       = "Monto inválido. Ingresá un número mayor a 0 (por ejemplo 15.50):"
	msgBadFecha       = "Fecha inválida. Usá el formato DD-MM-YYYY con una fecha real:"
	msgPickCategoria  = "Elegí la categoría con los botones."
	msgUnknownCateg   = "Esa categoría ya no existe. Elegí otra."
	msgNoCategories   = "No tenés categorías disponibles."
)

var fieldLabels = map[session.Field]string{
	session.FieldMonto:       "Monto",
	session.FieldFecha:       "Fecha",
	session.FieldCategoria:   "Categoría",
	session.FieldDescripcion: "Descripción",
}
