package bot

import (
	"fmt"
	"strings"

	"labreserva/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type PaginationParams struct {
	ChatID       int64
	MessageID    int // 0 para mensaje nuevo
	Page         int
	Title        string
	ItemPrefix   string
	PagePrefix   string
	BackCallback string
}

// renderPaginatedList draws one page of a list as text plus an inline
// keyboard, with navigation buttons when the list spans pages.
func (b *Bot) renderPaginatedList(params PaginationParams, totalCount int, itemsPerPage int, renderer func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton)) {
	if itemsPerPage <= 0 {
		itemsPerPage = b.config.Bot.PaginationSize
	}
	if itemsPerPage <= 0 {
		itemsPerPage = models.DefaultPaginationSize
	}

	startIdx := params.Page * itemsPerPage
	endIdx := startIdx + itemsPerPage
	if endIdx > totalCount {
		endIdx = totalCount
	}

	totalPages := (totalCount + itemsPerPage - 1) / itemsPerPage
	if params.Page >= totalPages && totalPages > 0 {
		params.Page = totalPages - 1
		startIdx = params.Page * itemsPerPage
		endIdx = totalCount
	}

	content, keyboard := renderer(startIdx, endIdx)

	var message strings.Builder
	message.WriteString(fmt.Sprintf("%s\n\n", params.Title))
	if totalPages > 1 {
		message.WriteString(fmt.Sprintf("Página %d de %d\n\n", params.Page+1, totalPages))
	}
	message.WriteString(content)

	var navButtons []tgbotapi.InlineKeyboardButton
	if params.Page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Anterior", fmt.Sprintf("%s%d", params.PagePrefix, params.Page-1)))
	}
	if endIdx < totalCount {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("Siguiente ➡️", fmt.Sprintf("%s%d", params.PagePrefix, params.Page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	if params.BackCallback != "" {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Volver", params.BackCallback),
		})
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)

	if params.MessageID != 0 {
		if _, err := b.tgService.EditMessage(params.ChatID, params.MessageID, message.String(), &markup); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to edit paginated list")
		}
		return
	}
	b.sendWithInlineKeyboard(params.ChatID, message.String(), markup)
}

// renderPaginatedLabs draws one page of the lab catalog, with one
// selection button per lab.
func (b *Bot) renderPaginatedLabs(params PaginationParams, labs []models.Laboratorio) {
	b.renderPaginatedList(params, len(labs), b.config.Bot.PaginationSize, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for i, lab := range labs[startIdx:endIdx] {
			content.WriteString(fmt.Sprintf("%d. *%s*\n", startIdx+i+1, lab.Nombre))
			if lab.Descripcion != "" {
				content.WriteString(fmt.Sprintf("   📝 %s\n", lab.Descripcion))
			}
			content.WriteString("\n")

			btn := tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. %s", startIdx+i+1, lab.Nombre),
				fmt.Sprintf("%s%d", params.ItemPrefix, lab.ID),
			)
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{btn})
		}

		return content.String(), keyboard
	})
}

// renderPaginatedReservas draws one page of a reservation listing with
// a cancel button per still-cancellable entry.
func (b *Bot) renderPaginatedReservas(params PaginationParams, reservas []models.Reserva, labDe func(int64) *models.Laboratorio) {
	b.renderPaginatedList(params, len(reservas), models.DefaultReservasPaginationSize, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for i := startIdx; i < endIdx; i++ {
			r := &reservas[i]
			content.WriteString(formatReserva(r, labDe(r.IDUbicacion)))
			content.WriteString("\n")

			// El botón de cancelar desaparece en cuanto la reserva
			// está cancelada.
			if !r.Cancelada() {
				keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
					tgbotapi.NewInlineKeyboardButtonData(
						fmt.Sprintf("❌ Cancelar #%d", r.ID),
						fmt.Sprintf("cancel_req:%d", r.ID),
					),
				})
			}
		}

		return content.String(), keyboard
	})
}
