package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"labreserva/internal/models"
	"labreserva/internal/views"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	query := update.CallbackQuery
	chatID := query.Message.Chat.ID
	data := query.Data

	// Acknowledge immediately so the client stops the spinner.
	if err := b.tgService.AnswerCallback(query.ID, ""); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to answer callback")
	}

	sesion, err := b.sesiones.Current(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if !sesion.Autenticada() {
		b.sendMessage(chatID, "🔐 Tu sesión expiró. Usa /start para entrar de nuevo.")
		return
	}

	logger := b.logger.With().Int64("chat_id", chatID).Str("callback", data).Logger()
	logger.Debug().Msg("Processing callback")

	switch {
	// --- reserva ---
	case strings.HasPrefix(data, "resv_labs_page:"):
		b.repageLabs(ctx, chatID, query.Message.MessageID, sesion, data, "resv_lab:", "resv_labs_page:", "🏢 *Elige el laboratorio a reservar:*")
	case strings.HasPrefix(data, "resv_lab:"):
		b.callbackReservaLab(ctx, chatID, sesion, data)
	case strings.HasPrefix(data, "resv_modo:"):
		b.callbackReservaModo(ctx, chatID, sesion, strings.TrimPrefix(data, "resv_modo:"))
	case strings.HasPrefix(data, "resv_eq:"):
		b.callbackReservaEquipo(ctx, chatID, sesion, data)
	case data == "resv_confirm":
		b.callbackReservaConfirm(ctx, chatID, sesion)
	case data == "resv_abort":
		b.clearStep(ctx, chatID)
		b.sendMessage(chatID, "🚫 Reserva descartada.")
	case strings.HasPrefix(data, "resv_list_page:"):
		b.callbackReservasPage(ctx, chatID, query.Message.MessageID, sesion, data)

	// --- cancelación en dos pasos ---
	case strings.HasPrefix(data, "cancel_req:"):
		b.callbackCancelRequest(ctx, chatID, sesion, data)
	case data == "cancel_yes":
		b.callbackCancelConfirm(ctx, chatID, sesion)
	case data == "cancel_no":
		vista := b.vistasDe(chatID, sesion.Usuario)
		vista.reservas.AbortCancel()
		b.sendMessage(chatID, "👍 La reserva sigue en pie.")

	// --- laboratorios ---
	case data == "lab_new":
		b.setStep(ctx, chatID, StepLabNombre, nil)
		b.sendMessage(chatID, "🏢 Escribe el nombre del nuevo laboratorio:")
	case strings.HasPrefix(data, "lab_del:"):
		b.callbackLabDelete(ctx, chatID, sesion, data)

	// --- equipos ---
	case strings.HasPrefix(data, "eqlab_page:"):
		b.repageLabs(ctx, chatID, query.Message.MessageID, sesion, data, "eqlab:", "eqlab_page:", "🖥 *Equipos: elige el laboratorio:*")
	case strings.HasPrefix(data, "eqlab:"):
		if id, ok := parseCallbackID(data, "eqlab:"); ok {
			b.setStep(ctx, chatID, "", map[string]interface{}{"equipo_lab": id})
			b.showEquiposDeLab(ctx, chatID, sesion, id)
		}
	case data == "eq_new":
		b.setStepKeepData(ctx, chatID, StepEquipoNombre)
		b.sendMessage(chatID, "🖥 Escribe el nombre del nuevo equipo (p. ej. «PC-01»):")
	case strings.HasPrefix(data, "eqest:"):
		b.callbackEquipoCrear(ctx, chatID, sesion, strings.TrimPrefix(data, "eqest:"))
	case strings.HasPrefix(data, "eq_st:"):
		if id, ok := parseCallbackID(data, "eq_st:"); ok {
			b.sendEstadosEquipo(chatID, fmt.Sprintf("eqchg:%d:", id))
		}
	case strings.HasPrefix(data, "eqchg:"):
		b.callbackEquipoEstado(ctx, chatID, sesion, data)
	case strings.HasPrefix(data, "eq_del:"):
		b.callbackEquipoDelete(ctx, chatID, sesion, data)

	// --- usuarios ---
	case data == "usr_new":
		b.setStep(ctx, chatID, StepUsuarioNombre, nil)
		b.sendMessage(chatID, "👤 Escribe el nombre completo del nuevo usuario:")
	case data == "usr_buscar":
		b.setStep(ctx, chatID, StepUsuarioBuscar, nil)
		b.sendMessage(chatID, "🔎 Escribe parte del nombre o correo a buscar:")
	case strings.HasPrefix(data, "usr_del:"):
		b.callbackUsuarioDelete(ctx, chatID, sesion, data)
	case strings.HasPrefix(data, "rol:"):
		b.callbackUsuarioCrear(ctx, chatID, sesion, strings.TrimPrefix(data, "rol:"))

	// --- horarios de clase ---
	case strings.HasPrefix(data, "hprof:"):
		id, ok := parseCallbackID(data, "hprof:")
		if !ok {
			return
		}
		b.setStep(ctx, chatID, StepHorarioMateria, map[string]interface{}{"horario_instructor": id})
		b.sendMessage(chatID, "📚 Escribe el nombre de la materia:")
	case strings.HasPrefix(data, "hdia:"):
		b.updateData(ctx, chatID, "sesion_dia", strings.TrimPrefix(data, "hdia:"))
		b.setStepKeepData(ctx, chatID, StepHorarioHoraInicio)
		b.sendMessage(chatID, "🕐 Hora de inicio de la sesión (HH:MM):")
	case strings.HasPrefix(data, "hlab_page:"):
		b.repageLabs(ctx, chatID, query.Message.MessageID, sesion, data, "hlab:", "hlab_page:", "🏢 *Elige el laboratorio de la sesión:*")
	case strings.HasPrefix(data, "hlab:"):
		b.callbackHorarioLab(ctx, chatID, sesion, data)
	case data == "h_add":
		b.sendDiasSemana(chatID)
	case data == "h_save":
		b.callbackHorarioGuardar(ctx, chatID, sesion)

	default:
		logger.Warn().Msg("Unknown callback data")
	}
}

// parseCallbackID extracts the numeric suffix of a prefixed callback.
func parseCallbackID(data, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// repageLabs re-renders a paginated lab list in place.
func (b *Bot) repageLabs(ctx context.Context, chatID int64, messageID int, sesion *models.Sesion, data, itemPrefix, pagePrefix, title string) {
	page, err := strconv.Atoi(strings.TrimPrefix(data, pagePrefix))
	if err != nil {
		return
	}
	vista := b.vistasDe(chatID, sesion.Usuario)
	labs := vista.inventario.Laboratorios()
	if len(labs) == 0 {
		if err := vista.inventario.LoadLaboratorios(b.authCtx(ctx, sesion)); err != nil {
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}
		labs = vista.inventario.Laboratorios()
	}
	b.renderPaginatedLabs(PaginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       page,
		Title:      title,
		ItemPrefix: itemPrefix,
		PagePrefix: pagePrefix,
	}, labs)
}

// --- reserva ---

func (b *Bot) callbackReservaLab(ctx context.Context, chatID int64, sesion *models.Sesion, data string) {
	labID, ok := parseCallbackID(data, "resv_lab:")
	if !ok {
		return
	}

	vista := b.vistasDe(chatID, sesion.Usuario)
	lab := vista.inventario.Laboratorio(labID)
	nombre := fmt.Sprintf("laboratorio %d", labID)
	if lab != nil {
		nombre = lab.Nombre
	}

	b.setStep(ctx, chatID, StepReservaFecha, map[string]interface{}{"id_laboratorio": labID})
	b.sendMessage(chatID, fmt.Sprintf("🏢 Has elegido *%s*.\n\n📅 Escribe la fecha de la reserva (AAAA-MM-DD):", nombre))
}

func (b *Bot) callbackReservaModo(ctx context.Context, chatID int64, sesion *models.Sesion, modo string) {
	switch modo {
	case "lab":
		b.updateData(ctx, chatID, "equipo_especifico", false)
		b.sendReservaResumen(ctx, chatID, sesion)
	case "equipo":
		labID := sesion.GetInt64("id_laboratorio")
		vista := b.vistasDe(chatID, sesion.Usuario)
		if err := vista.inventario.LoadEquipos(b.authCtx(ctx, sesion), labID); err != nil {
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}

		operativos := vista.inventario.EquiposOperativos()
		if len(operativos) == 0 {
			b.sendMessage(chatID, "😕 No hay equipos operativos en ese laboratorio. Puedes reservar el laboratorio completo.")
			return
		}

		var keyboard [][]tgbotapi.InlineKeyboardButton
		for _, e := range operativos {
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("🖥 %s (%s)", e.Nombre, e.Modelo),
					fmt.Sprintf("resv_eq:%d", e.ID),
				),
			})
		}
		b.sendWithInlineKeyboard(chatID, "🖥 Elige el equipo:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
	}
}

func (b *Bot) callbackReservaEquipo(ctx context.Context, chatID int64, sesion *models.Sesion, data string) {
	equipoID, ok := parseCallbackID(data, "resv_eq:")
	if !ok {
		return
	}
	b.updateData(ctx, chatID, "equipo_especifico", true)
	b.updateData(ctx, chatID, "id_equipo", equipoID)
	b.sendReservaResumen(ctx, chatID, sesion)
}

// sendReservaResumen shows the collected form and asks for confirmation.
func (b *Bot) sendReservaResumen(ctx context.Context, chatID int64, sesion *models.Sesion) {
	actual, err := b.sesiones.Current(ctx, chatID)
	if err != nil || actual == nil {
		return
	}

	vista := b.vistasDe(chatID, sesion.Usuario)
	objetivo := "todo el laboratorio"
	if actual.GetBool("equipo_especifico") {
		objetivo = fmt.Sprintf("equipo #%d", actual.GetInt64("id_equipo"))
	}
	labNombre := fmt.Sprintf("laboratorio %d", actual.GetInt64("id_laboratorio"))
	if lab := vista.inventario.Laboratorio(actual.GetInt64("id_laboratorio")); lab != nil {
		labNombre = lab.Nombre
	}

	texto := fmt.Sprintf(
		"📋 *Resumen de la reserva*\n\n🏢 %s\n🎯 %s\n📅 %s\n🕐 %s – %s\n\n¿Confirmas?",
		labNombre, objetivo,
		actual.GetString("fecha"),
		actual.GetString("hora_inicio"), actual.GetString("hora_fin"),
	)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirmar", "resv_confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Descartar", "resv_abort"),
		),
	)
	b.sendWithInlineKeyboard(chatID, texto, keyboard)
}

func (b *Bot) callbackReservaConfirm(ctx context.Context, chatID int64, sesion *models.Sesion) {
	actual, err := b.sesiones.Current(ctx, chatID)
	if err != nil || actual == nil {
		return
	}

	form := views.FormReserva{
		Fecha:            actual.GetString("fecha"),
		HoraInicio:       actual.GetString("hora_inicio"),
		HoraFin:          actual.GetString("hora_fin"),
		IDLaboratorio:    actual.GetInt64("id_laboratorio"),
		IDEquipo:         actual.GetInt64("id_equipo"),
		EquipoEspecifico: actual.GetBool("equipo_especifico"),
	}

	vista := b.vistasDe(chatID, sesion.Usuario)
	reserva, err := vista.reservas.Crear(b.authCtx(ctx, sesion), form)
	b.clearStep(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.ReservasCreadas.Inc()
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ ¡Reserva #%d creada! Estado: %s %s", reserva.ID, statusIcon(reserva.Status), reserva.Status))
}

func (b *Bot) callbackReservasPage(ctx context.Context, chatID int64, messageID int, sesion *models.Sesion, data string) {
	// resv_list_page:<fecha>:<page>
	rest := strings.TrimPrefix(data, "resv_list_page:")
	idx := strings.LastIndex(rest, ":")
	if idx < 0 {
		return
	}
	fecha := rest[:idx]
	page, err := strconv.Atoi(rest[idx+1:])
	if err != nil {
		return
	}
	b.showReservas(ctx, chatID, sesion, fecha, page, messageID)
}

// --- cancelación ---

func (b *Bot) callbackCancelRequest(ctx context.Context, chatID int64, sesion *models.Sesion, data string) {
	id, ok := parseCallbackID(data, "cancel_req:")
	if !ok {
		return
	}

	vista := b.vistasDe(chatID, sesion.Usuario)
	reserva, err := vista.reservas.RequestCancel(id)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Sí, cancelar", "cancel_yes"),
			tgbotapi.NewInlineKeyboardButtonData("↩️ No", "cancel_no"),
		),
	)
	b.sendWithInlineKeyboard(chatID,
		fmt.Sprintf("⚠️ ¿Seguro que quieres cancelar la reserva #%d del %s?", reserva.ID, reserva.FechaInicio),
		keyboard)
}

func (b *Bot) callbackCancelConfirm(ctx context.Context, chatID int64, sesion *models.Sesion) {
	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.reservas.ConfirmCancel(b.authCtx(ctx, sesion)); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if b.metrics != nil {
		b.metrics.ReservasCanceladas.Inc()
	}
	b.sendMessage(chatID, "✅ Reserva cancelada.")
}

// --- laboratorios y equipos ---

func (b *Bot) callbackLabDelete(ctx context.Context, chatID int64, sesion *models.Sesion, data string) {
	id, ok := parseCallbackID(data, "lab_del:")
	if !ok {
		return
	}
	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.inventario.EliminarLaboratorio(b.authCtx(ctx, sesion), id); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, "🗑 Laboratorio eliminado.")
	b.showLaboratorios(ctx, chatID, sesion)
}

func (b *Bot) callbackEquipoCrear(ctx context.Context, chatID int64, sesion *models.Sesion, estado string) {
	actual, err := b.sesiones.Current(ctx, chatID)
	if err != nil || actual == nil {
		return
	}
	labID := actual.GetInt64("equipo_lab")

	vista := b.vistasDe(chatID, sesion.Usuario)
	equipo, err := vista.inventario.CrearEquipo(
		b.authCtx(ctx, sesion),
		actual.GetString("equipo_nombre"),
		actual.GetString("equipo_modelo"),
		estado,
		labID,
	)
	b.clearStep(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ Equipo *%s* registrado.", equipo.Nombre))
	b.showEquiposDeLab(ctx, chatID, sesion, labID)
}

func (b *Bot) callbackEquipoEstado(ctx context.Context, chatID int64, sesion *models.Sesion, data string) {
	// eqchg:<id>:<estado>
	rest := strings.TrimPrefix(data, "eqchg:")
	idx := strings.Index(rest, ":")
	if idx < 0 {
		return
	}
	id, err := strconv.ParseInt(rest[:idx], 10, 64)
	if err != nil {
		return
	}
	estado := rest[idx+1:]

	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.inventario.CambiarEstadoEquipo(b.authCtx(ctx, sesion), id, estado); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ Estado actualizado a %s %s.", equipoIcon(estado), estado))
}

func (b *Bot) callbackEquipoDelete(ctx context.Context, chatID int64, sesion *models.Sesion, data string) {
	id, ok := parseCallbackID(data, "eq_del:")
	if !ok {
		return
	}
	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.inventario.EliminarEquipo(b.authCtx(ctx, sesion), id); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, "🗑 Equipo eliminado.")
}

// --- usuarios ---

func (b *Bot) callbackUsuarioCrear(ctx context.Context, chatID int64, sesion *models.Sesion, tipo string) {
	actual, err := b.sesiones.Current(ctx, chatID)
	if err != nil || actual == nil {
		return
	}

	vista := b.vistasDe(chatID, sesion.Usuario)
	usuario, err := vista.usuarios.Crear(
		b.authCtx(ctx, sesion),
		actual.GetString("usuario_nombre"),
		actual.GetString("usuario_email"),
		actual.GetString("usuario_password"),
		models.ParseRol(tipo),
	)
	b.clearStep(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ Usuario *%s* creado con rol %s.", usuario.Name, usuario.Type))
}

func (b *Bot) callbackUsuarioDelete(ctx context.Context, chatID int64, sesion *models.Sesion, data string) {
	id, ok := parseCallbackID(data, "usr_del:")
	if !ok {
		return
	}
	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.usuarios.Eliminar(b.authCtx(ctx, sesion), id); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, "🗑 Usuario eliminado.")
}

// --- horarios ---

func (b *Bot) callbackHorarioLab(ctx context.Context, chatID int64, sesion *models.Sesion, data string) {
	labID, ok := parseCallbackID(data, "hlab:")
	if !ok {
		return
	}

	actual, err := b.sesiones.Current(ctx, chatID)
	if err != nil || actual == nil {
		return
	}

	sesiones, err := decodeSesiones(actual.GetString("sesiones_json"))
	if err != nil {
		b.logger.Error().Err(err).Msg("Corrupt schedule scratch data")
		sesiones = nil
	}
	sesiones = append(sesiones, models.SesionClase{
		DiaSemana:   actual.GetString("sesion_dia"),
		HoraInicio:  actual.GetString("sesion_hora_inicio"),
		HoraFin:     actual.GetString("sesion_hora_fin"),
		IDUbicacion: labID,
		Estado:      models.StatusPending,
	})

	encoded, err := json.Marshal(sesiones)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.updateData(ctx, chatID, "sesiones_json", string(encoded))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Otra sesión", "h_add"),
			tgbotapi.NewInlineKeyboardButtonData("💾 Guardar horario", "h_save"),
		),
	)
	b.sendWithInlineKeyboard(chatID,
		fmt.Sprintf("✅ Sesión añadida (%d en total). ¿Algo más?", len(sesiones)),
		keyboard)
}

func (b *Bot) callbackHorarioGuardar(ctx context.Context, chatID int64, sesion *models.Sesion) {
	actual, err := b.sesiones.Current(ctx, chatID)
	if err != nil || actual == nil {
		return
	}

	sesiones, err := decodeSesiones(actual.GetString("sesiones_json"))
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	vista := b.vistasDe(chatID, sesion.Usuario)
	horario, err := vista.horarios.Crear(b.authCtx(ctx, sesion), actual.GetString("horario_materia"), actual.GetInt64("horario_instructor"), sesiones)
	b.clearStep(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ Horario de *%s* guardado con %d sesiones.", horario.NombreMateria, len(horario.Sesiones)))
}

func decodeSesiones(raw string) ([]models.SesionClase, error) {
	if raw == "" {
		return nil, nil
	}
	var sesiones []models.SesionClase
	if err := json.Unmarshal([]byte(raw), &sesiones); err != nil {
		return nil, err
	}
	return sesiones, nil
}
