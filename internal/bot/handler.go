package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labreserva/internal/models"
	"labreserva/internal/views"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	sesion, err := b.sesiones.Current(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	switch text {
	case "/start":
		b.handleStart(ctx, chatID, sesion)
		return
	case "/ayuda", "/help":
		b.sendAyuda(chatID, sesion)
		return
	}

	if !sesion.Autenticada() {
		b.handleLoginFlow(ctx, chatID, text, sesion)
		return
	}

	switch text {
	case btnReservar:
		b.startReserva(ctx, chatID, sesion)
	case btnMisReservas:
		b.setStep(ctx, chatID, StepMisReservasFecha, nil)
		b.sendMessage(chatID, "📅 ¿De qué fecha quieres ver tus reservas?\nEscribe la fecha (AAAA-MM-DD) o «hoy».")
	case btnLaboratorios:
		b.showLaboratorios(ctx, chatID, sesion)
	case btnEquipos:
		b.startEquiposMenu(ctx, chatID, sesion)
	case btnUsuarios:
		b.showUsuarios(ctx, chatID, sesion, "", "")
	case btnHorarios:
		b.startHorario(ctx, chatID, sesion)
	case btnExportar:
		if !sesion.Rol().EsAdministrativo() {
			b.sendMessage(chatID, b.getErrorMessage(views.ErrAccesoDenegado))
			return
		}
		b.setStep(ctx, chatID, StepExportFecha, nil)
		b.sendMessage(chatID, "📊 Escribe la fecha de inicio de la semana a exportar (AAAA-MM-DD).")
	case btnSalir:
		b.handleLogout(ctx, chatID)
	default:
		b.handleStep(ctx, chatID, text, sesion)
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, sesion *models.Sesion) {
	if sesion.Autenticada() {
		b.sendMainMenu(chatID, sesion)
		return
	}

	b.setStep(ctx, chatID, StepLoginEmail, nil)
	b.sendMessage(chatID, "🔐 Bienvenido al sistema de reservas de laboratorios.\n\nEscribe tu correo institucional para iniciar sesión:")
}

func (b *Bot) sendAyuda(chatID int64, sesion *models.Sesion) {
	var sb strings.Builder
	sb.WriteString("ℹ️ *Ayuda*\n\n")
	sb.WriteString("• /start — iniciar sesión o volver al menú\n")
	sb.WriteString("• 📅 Reservar — reservar un equipo o un laboratorio completo\n")
	sb.WriteString("• 🗓 Mis reservas — ver y cancelar tus reservas\n")
	sb.WriteString("• 🏢 Laboratorios — catálogo de laboratorios\n")
	if sesion.Rol().Puede(models.CapCrearHorarios) {
		sb.WriteString("• 📚 Horarios de clase — registrar un horario semanal\n")
	}
	if sesion.Rol().EsAdministrativo() {
		sb.WriteString("• 🖥 Equipos / 👥 Usuarios / 📊 Exportar — gestión\n")
	}
	b.sendMessage(chatID, sb.String())
}

// handleLoginFlow is the single-attempt credential exchange: a failed
// login reports the error and asks for the email again.
func (b *Bot) handleLoginFlow(ctx context.Context, chatID int64, text string, sesion *models.Sesion) {
	switch sesion.CurrentStep {
	case StepLoginEmail:
		if !strings.Contains(text, "@") {
			b.sendMessage(chatID, "⚠️ Eso no parece un correo. Inténtalo de nuevo:")
			return
		}
		b.setStep(ctx, chatID, StepLoginPassword, map[string]interface{}{"email": text})
		b.sendMessage(chatID, "🔑 Ahora escribe tu contraseña:")

	case StepLoginPassword:
		email := sesion.GetString("email")
		nueva, err := b.sesiones.Login(ctx, chatID, email, text)
		if err != nil {
			if b.metrics != nil {
				b.metrics.LoginsTotal.WithLabelValues("failure").Inc()
			}
			b.sendMessage(chatID, "❌ Credenciales incorrectas.\n\nEscribe tu correo para intentarlo de nuevo:")
			b.setStep(ctx, chatID, StepLoginEmail, nil)
			return
		}
		if b.metrics != nil {
			b.metrics.LoginsTotal.WithLabelValues("success").Inc()
		}
		b.vistas.drop(chatID)
		b.sendMainMenu(chatID, nueva)

	default:
		b.sendMessage(chatID, "🔐 Usa /start para iniciar sesión.")
	}
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64) {
	if err := b.sesiones.Logout(ctx, chatID); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to logout")
	}
	b.vistas.drop(chatID)

	msg := tgbotapi.NewMessage(chatID, "👋 Sesión cerrada. Usa /start para volver a entrar.")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send logout message")
	}
}

// handleStep dispatches free-form text according to the conversation
// step stored in the session.
func (b *Bot) handleStep(ctx context.Context, chatID int64, text string, sesion *models.Sesion) {
	switch sesion.CurrentStep {
	case StepReservaFecha:
		b.handleReservaFecha(ctx, chatID, text)
	case StepReservaHoraInicio:
		b.handleReservaHoraInicio(ctx, chatID, text)
	case StepReservaHoraFin:
		b.handleReservaHoraFin(ctx, chatID, text, sesion)
	case StepMisReservasFecha:
		b.handleMisReservasFecha(ctx, chatID, text, sesion)
	case StepLabNombre:
		b.setStep(ctx, chatID, StepLabDescripcion, map[string]interface{}{"lab_nombre": text})
		b.sendMessage(chatID, "📝 Escribe la descripción del laboratorio:")
	case StepLabDescripcion:
		b.handleLabDescripcion(ctx, chatID, text, sesion)
	case StepEquipoNombre:
		b.updateData(ctx, chatID, "equipo_nombre", text)
		b.setStepKeepData(ctx, chatID, StepEquipoModelo)
		b.sendMessage(chatID, "🛠 Escribe el modelo del equipo (p. ej. «i5/8GB»):")
	case StepEquipoModelo:
		b.updateData(ctx, chatID, "equipo_modelo", text)
		b.sendEstadosEquipo(chatID, "eqest:")
	case StepUsuarioNombre:
		b.setStep(ctx, chatID, StepUsuarioEmail, map[string]interface{}{"usuario_nombre": text})
		b.sendMessage(chatID, "📧 Escribe el correo del nuevo usuario:")
	case StepUsuarioEmail:
		b.updateData(ctx, chatID, "usuario_email", text)
		b.setStepKeepData(ctx, chatID, StepUsuarioPassword)
		b.sendMessage(chatID, "🔑 Escribe la contraseña inicial:")
	case StepUsuarioPassword:
		b.updateData(ctx, chatID, "usuario_password", text)
		b.sendRolesKeyboard(chatID, sesion)
	case StepUsuarioBuscar:
		b.showUsuarios(ctx, chatID, sesion, text, "")
	case StepHorarioMateria:
		b.setStep(ctx, chatID, "", map[string]interface{}{"horario_materia": text, "sesiones_json": "[]"})
		b.sendDiasSemana(chatID)
	case StepHorarioHoraInicio:
		b.handleHorarioHoraInicio(ctx, chatID, text)
	case StepHorarioHoraFin:
		b.handleHorarioHoraFin(ctx, chatID, text)
	case StepExportFecha:
		b.handleExportFecha(ctx, chatID, text, sesion)
	default:
		b.sendMessage(chatID, "🤔 No te he entendido. Usa el menú o /ayuda.")
	}
}

// --- flujo de reserva ---

func (b *Bot) startReserva(ctx context.Context, chatID int64, sesion *models.Sesion) {
	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.inventario.LoadLaboratorios(b.authCtx(ctx, sesion)); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	labs := vista.inventario.Laboratorios()
	if len(labs) == 0 {
		b.sendMessage(chatID, "😕 No hay laboratorios disponibles por ahora.")
		return
	}

	b.setStep(ctx, chatID, "", nil)
	b.renderPaginatedLabs(PaginationParams{
		ChatID:     chatID,
		Title:      "🏢 *Elige el laboratorio a reservar:*",
		ItemPrefix: "resv_lab:",
		PagePrefix: "resv_labs_page:",
	}, labs)
}

func (b *Bot) handleReservaFecha(ctx context.Context, chatID int64, text string) {
	fecha, dia, err := parseFecha(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ Fecha inválida. Usa el formato AAAA-MM-DD (p. ej. 2025-02-01):")
		return
	}
	if dia.Before(time.Now().Truncate(24 * time.Hour)) {
		b.sendMessage(chatID, "⚠️ No puedes reservar en una fecha pasada. Escribe otra fecha:")
		return
	}

	b.updateData(ctx, chatID, "fecha", fecha)
	b.setStepKeepData(ctx, chatID, StepReservaHoraInicio)
	b.sendMessage(chatID, fmt.Sprintf("🕐 Hora de inicio (HH:MM, entre %s y %s):", models.HoraApertura, models.HoraCierre))
}

func (b *Bot) handleReservaHoraInicio(ctx context.Context, chatID int64, text string) {
	hora, err := parseHora(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ "+err.Error()+". Inténtalo de nuevo:")
		return
	}
	b.updateData(ctx, chatID, "hora_inicio", hora)
	b.setStepKeepData(ctx, chatID, StepReservaHoraFin)
	b.sendMessage(chatID, "🕐 Hora de fin (HH:MM):")
}

func (b *Bot) handleReservaHoraFin(ctx context.Context, chatID int64, text string, sesion *models.Sesion) {
	hora, err := parseHora(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ "+err.Error()+". Inténtalo de nuevo:")
		return
	}
	if hora <= sesion.GetString("hora_inicio") {
		b.sendMessage(chatID, "⚠️ La hora de fin debe ser posterior a la de inicio. Inténtalo de nuevo:")
		return
	}

	b.updateData(ctx, chatID, "hora_fin", hora)
	b.setStepKeepData(ctx, chatID, "")

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏢 Todo el laboratorio", "resv_modo:lab"),
			tgbotapi.NewInlineKeyboardButtonData("🖥 Un equipo", "resv_modo:equipo"),
		),
	)
	b.sendWithInlineKeyboard(chatID, "¿Qué quieres reservar?", keyboard)
}

// setStepKeepData changes the step without touching the scratch data.
func (b *Bot) setStepKeepData(ctx context.Context, chatID int64, step string) {
	sesion, err := b.sesiones.Current(ctx, chatID)
	if err != nil || sesion == nil {
		b.setStep(ctx, chatID, step, nil)
		return
	}
	b.setStep(ctx, chatID, step, sesion.TempData)
}

func (b *Bot) handleMisReservasFecha(ctx context.Context, chatID int64, text string, sesion *models.Sesion) {
	var fecha string
	if strings.EqualFold(text, "hoy") {
		fecha = time.Now().Format("2006-01-02")
	} else {
		var err error
		fecha, _, err = parseFecha(text)
		if err != nil {
			b.sendMessage(chatID, "⚠️ Fecha inválida. Usa AAAA-MM-DD o escribe «hoy»:")
			return
		}
	}

	b.clearStep(ctx, chatID)
	b.showReservas(ctx, chatID, sesion, fecha, 0, 0)
}

// showReservas loads and renders the reservation list for a date.
func (b *Bot) showReservas(ctx context.Context, chatID int64, sesion *models.Sesion, fecha string, page, messageID int) {
	vista := b.vistasDe(chatID, sesion.Usuario)
	authCtx := b.authCtx(ctx, sesion)

	vista.reservas.SetFiltro(views.FiltroReservas{Fecha: fecha})
	if err := vista.reservas.Load(authCtx); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	// El catálogo da nombre a los laboratorios del listado.
	_ = vista.inventario.LoadLaboratorios(authCtx)

	visibles := vista.reservas.Visible()
	if len(visibles) == 0 {
		b.sendMessage(chatID, fmt.Sprintf("😌 No tienes reservas el %s.", fecha))
		return
	}

	b.renderPaginatedReservas(PaginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       page,
		Title:      fmt.Sprintf("🗓 *Reservas del %s*", fecha),
		PagePrefix: "resv_list_page:" + fecha + ":",
	}, visibles, vista.inventario.Laboratorio)
}

// --- flujos de inventario ---

func (b *Bot) showLaboratorios(ctx context.Context, chatID int64, sesion *models.Sesion) {
	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.inventario.LoadLaboratorios(b.authCtx(ctx, sesion)); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	labs := vista.inventario.Laboratorios()

	var sb strings.Builder
	sb.WriteString("🏢 *Laboratorios*\n\n")
	if len(labs) == 0 {
		sb.WriteString("No hay laboratorios registrados.\n")
	}
	for i, lab := range labs {
		sb.WriteString(fmt.Sprintf("%d. *%s*\n", i+1, lab.Nombre))
		if lab.Descripcion != "" {
			sb.WriteString(fmt.Sprintf("   📝 %s\n", lab.Descripcion))
		}
	}

	if !sesion.Rol().Puede(models.CapGestionarLaboratorios) {
		b.sendMessage(chatID, sb.String())
		return
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("➕ Nuevo laboratorio", "lab_new"),
	})
	for _, lab := range labs {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 Eliminar %s", lab.Nombre), fmt.Sprintf("lab_del:%d", lab.ID)),
		})
	}
	b.sendWithInlineKeyboard(chatID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) handleLabDescripcion(ctx context.Context, chatID int64, text string, sesion *models.Sesion) {
	nombre := sesion.GetString("lab_nombre")
	vista := b.vistasDe(chatID, sesion.Usuario)

	lab, err := vista.inventario.CrearLaboratorio(b.authCtx(ctx, sesion), nombre, text)
	b.clearStep(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ Laboratorio *%s* creado (id %d).", lab.Nombre, lab.ID))
}

func (b *Bot) startEquiposMenu(ctx context.Context, chatID int64, sesion *models.Sesion) {
	if !sesion.Rol().Puede(models.CapGestionarEquipos) {
		b.sendMessage(chatID, b.getErrorMessage(views.ErrAccesoDenegado))
		return
	}

	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.inventario.LoadLaboratorios(b.authCtx(ctx, sesion)); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	labs := vista.inventario.Laboratorios()
	if len(labs) == 0 {
		b.sendMessage(chatID, "😕 Primero crea un laboratorio.")
		return
	}

	b.renderPaginatedLabs(PaginationParams{
		ChatID:     chatID,
		Title:      "🖥 *Equipos: elige el laboratorio:*",
		ItemPrefix: "eqlab:",
		PagePrefix: "eqlab_page:",
	}, labs)
}

// showEquiposDeLab renders a lab's equipment with management actions.
func (b *Bot) showEquiposDeLab(ctx context.Context, chatID int64, sesion *models.Sesion, labID int64) {
	vista := b.vistasDe(chatID, sesion.Usuario)
	authCtx := b.authCtx(ctx, sesion)

	if err := vista.inventario.LoadEquipos(authCtx, labID); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	equipos := vista.inventario.Equipos()

	var sb strings.Builder
	lab := vista.inventario.Laboratorio(labID)
	if lab != nil {
		sb.WriteString(fmt.Sprintf("🖥 *Equipos de %s*\n\n", lab.Nombre))
	} else {
		sb.WriteString(fmt.Sprintf("🖥 *Equipos del laboratorio %d*\n\n", labID))
	}
	if len(equipos) == 0 {
		sb.WriteString("Sin equipos registrados.\n")
	}
	for _, e := range equipos {
		sb.WriteString(formatEquipo(&e))
		sb.WriteString("\n")
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("➕ Nuevo equipo", "eq_new"),
	})
	for _, e := range equipos {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🔧 Estado %s", e.Nombre), fmt.Sprintf("eq_st:%d", e.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("eq_del:%d", e.ID)),
		})
	}
	b.sendWithInlineKeyboard(chatID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendEstadosEquipo(chatID int64, prefix string) {
	var row []tgbotapi.InlineKeyboardButton
	for _, estado := range models.EstadosEquipo {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(estado, prefix+estado))
	}
	b.sendWithInlineKeyboard(chatID, "⚙️ Elige el estado del equipo:", tgbotapi.NewInlineKeyboardMarkup(row))
}

// --- flujo de usuarios ---

func (b *Bot) showUsuarios(ctx context.Context, chatID int64, sesion *models.Sesion, filtroTexto string, filtroRol models.Rol) {
	vista := b.vistasDe(chatID, sesion.Usuario)

	if err := vista.usuarios.Load(b.authCtx(ctx, sesion)); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.clearStep(ctx, chatID)

	usuarios := vista.usuarios.Filtrar(filtroTexto, filtroRol)

	var sb strings.Builder
	sb.WriteString("👥 *Usuarios*\n")
	if filtroTexto != "" {
		sb.WriteString(fmt.Sprintf("_Filtro: %s_\n", filtroTexto))
	}
	sb.WriteString("\n")
	for _, u := range usuarios {
		sb.WriteString(fmt.Sprintf("• *%s* — %s (%s)\n", u.Name, u.Email, u.Type))
	}
	if len(usuarios) == 0 {
		sb.WriteString("Sin resultados.\n")
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("➕ Nuevo usuario", "usr_new"),
		tgbotapi.NewInlineKeyboardButtonData("🔎 Buscar", "usr_buscar"),
	})
	for _, u := range usuarios {
		if u.ID == sesion.Usuario.ID {
			continue
		}
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 %s", u.Name), fmt.Sprintf("usr_del:%d", u.ID)),
		})
	}
	b.sendWithInlineKeyboard(chatID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

// sendRolesKeyboard offers the role options for a new account. Only a
// superuser sees the administrator option.
func (b *Bot) sendRolesKeyboard(chatID int64, sesion *models.Sesion) {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Estudiante", "rol:"+models.TipoEstudiante),
		tgbotapi.NewInlineKeyboardButtonData("Profesor", "rol:"+models.TipoProfesor),
	}
	if sesion.Rol().Puede(models.CapCrearAdministradores) {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Administrador", "rol:"+models.TipoAdministrador))
	}
	b.sendWithInlineKeyboard(chatID, "🎓 Elige el rol del nuevo usuario:", tgbotapi.NewInlineKeyboardMarkup(row))
}

// --- flujo de horarios de clase ---

func (b *Bot) startHorario(ctx context.Context, chatID int64, sesion *models.Sesion) {
	if !sesion.Rol().Puede(models.CapCrearHorarios) {
		b.sendMessage(chatID, b.getErrorMessage(views.ErrAccesoDenegado))
		return
	}
	// Admins can register a schedule on behalf of an instructor.
	if sesion.Rol().EsAdministrativo() {
		b.sendInstructorKeyboard(ctx, chatID, sesion)
		return
	}
	b.setStep(ctx, chatID, StepHorarioMateria, nil)
	b.sendMessage(chatID, "📚 Escribe el nombre de la materia:")
}

func (b *Bot) sendInstructorKeyboard(ctx context.Context, chatID int64, sesion *models.Sesion) {
	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.usuarios.Load(b.authCtx(ctx, sesion)); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	keyboard := [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("📋 Para mí", "hprof:0")},
	}
	for _, u := range vista.usuarios.Usuarios() {
		if models.ParseRol(u.Type) != models.RolProfesor || u.ID == sesion.Usuario.ID {
			continue
		}
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("👩‍🏫 "+u.Name, fmt.Sprintf("hprof:%d", u.ID)),
		})
	}
	b.sendWithInlineKeyboard(chatID, "🎓 ¿Para qué profesor es el horario?", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendDiasSemana(chatID int64) {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, dia := range models.DiasSemana {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(dia, "hdia:"+dia))
		if len(row) == 3 {
			keyboard = append(keyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		keyboard = append(keyboard, row)
	}
	b.sendWithInlineKeyboard(chatID, "📆 Elige el día de la sesión:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) handleHorarioHoraInicio(ctx context.Context, chatID int64, text string) {
	hora, err := parseHora(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ "+err.Error()+". Inténtalo de nuevo:")
		return
	}
	b.updateData(ctx, chatID, "sesion_hora_inicio", hora)
	b.setStepKeepData(ctx, chatID, StepHorarioHoraFin)
	b.sendMessage(chatID, "🕐 Hora de fin de la sesión (HH:MM):")
}

func (b *Bot) handleHorarioHoraFin(ctx context.Context, chatID int64, text string) {
	hora, err := parseHora(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ "+err.Error()+". Inténtalo de nuevo:")
		return
	}

	sesion, err := b.sesiones.Current(ctx, chatID)
	if err != nil || sesion == nil {
		return
	}
	if hora <= sesion.GetString("sesion_hora_inicio") {
		b.sendMessage(chatID, "⚠️ La hora de fin debe ser posterior a la de inicio. Inténtalo de nuevo:")
		return
	}

	b.updateData(ctx, chatID, "sesion_hora_fin", hora)
	b.setStepKeepData(ctx, chatID, "")

	vista := b.vistasDe(chatID, sesion.Usuario)
	if err := vista.inventario.LoadLaboratorios(b.authCtx(ctx, sesion)); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.renderPaginatedLabs(PaginationParams{
		ChatID:     chatID,
		Title:      "🏢 *Elige el laboratorio de la sesión:*",
		ItemPrefix: "hlab:",
		PagePrefix: "hlab_page:",
	}, vista.inventario.Laboratorios())
}
