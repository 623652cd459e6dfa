package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/usecase"
)

const awaitingInputMessage = `⏳ In attesa dei file.
Invia il file inventario (Ready Pro) con didascalia "inventario" e almeno un file Keepa con didascalia "keepa [SITO]".`

// Options bot behaviour knobs
type Options struct {
	MaxUploadBytes int64
	AlignOffset    decimal.Decimal // default of /offset without argument
	HistogramBins  int
	Thresholds     entity.Thresholds
}

// BotHandler Telegram bot handler
type BotHandler struct {
	bot      *tgbotapi.BotAPI
	sessions usecase.SessionUseCase
	opts     Options
	client   *http.Client
}

// NewBotHandler connects to the bot API
func NewBotHandler(token string, sessions usecase.SessionUseCase, opts Options) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 * 1024 * 1024
	}

	return &BotHandler{
		bot:      bot,
		sessions: sessions,
		opts:     opts,
		client:   http.DefaultClient,
	}, nil
}

// Start long polling until ctx is done
func (h *BotHandler) Start(ctx context.Context) error {
	log.Printf("🤖 Bot @%s started", h.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			log.Println("Bot stopping...")
			h.bot.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			go h.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage one update
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Document != nil {
		h.handleDocumentMessage(ctx, message)
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	if message.Text != "" {
		h.sendMessage(message.Chat.ID, "Usa /help per l'elenco dei comandi.")
	}
}

// handleCommand slash commands
func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := message.CommandArguments()

	switch message.Command() {
	case "start":
		h.sendMessage(chatID, h.getWelcomeMessage())
	case "help":
		h.sendMessage(chatID, h.getHelpMessage())
	case "report":
		h.handleReportCommand(ctx, chatID)
	case "filter", "filtro":
		h.handleFilterCommand(ctx, chatID, args)
	case "align", "allinea":
		h.handleEditCommand(ctx, chatID, entity.EditAlign, decimal.Zero)
	case "offset":
		amount, err := parseAmount(args, &h.opts.AlignOffset)
		if err != nil {
			h.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		h.handleEditCommand(ctx, chatID, entity.EditAlignOffset, amount)
	case "setprice", "prezzo":
		amount, err := parseAmount(args, nil)
		if err != nil {
			h.sendMessage(chatID, "❌ "+err.Error()+"\nEsempio: /setprice 19,90")
			return
		}
		h.handleEditCommand(ctx, chatID, entity.EditSetPrice, amount)
	case "undo", "annulla":
		h.handleUndoCommand(ctx, chatID)
	case "export", "esporta":
		h.handleExportCommand(ctx, chatID, args)
	case "histogram", "istogramma":
		h.handleHistogramCommand(ctx, chatID)
	case "history", "storico":
		h.handleHistoryCommand(ctx, chatID)
	case "reset":
		if err := h.sessions.Reset(ctx, chatID); err != nil {
			log.Printf("Reset error: %v", err)
			h.sendMessage(chatID, "❌ Errore durante il reset.")
			return
		}
		h.sendMessage(chatID, "🧹 Sessione azzerata.\n\n"+awaitingInputMessage)
	default:
		h.sendMessage(chatID, "Comando sconosciuto. /help per l'aiuto.")
	}
}

// handleDocumentMessage inventory or Keepa upload
func (h *BotHandler) handleDocumentMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	doc := message.Document

	if int64(doc.FileSize) > h.opts.MaxUploadBytes {
		h.sendMessage(chatID, fmt.Sprintf("❌ Il file supera il limite di %d MB.", h.opts.MaxUploadBytes/(1024*1024)))
		return
	}
	if !acceptedFile(doc.FileName) {
		h.sendMessage(chatID, "❌ Sono accettati solo file CSV, TSV o Excel (.xlsx).")
		return
	}

	role, site := parseCaption(message.Caption, doc.FileName)
	if role == roleUnknown {
		h.sendMessage(chatID, `❓ Di che file si tratta? Reinvialo con didascalia "inventario" oppure "keepa IT".`)
		return
	}

	data, err := h.downloadFile(ctx, doc.FileID)
	if err != nil {
		log.Printf("File download error: %v", err)
		h.sendMessage(chatID, "❌ Errore nello scaricare il file.")
		return
	}

	file := entity.SourceFile{Name: doc.FileName, Data: data, Site: site}
	var stats *entity.SourceStats
	if role == roleInventory {
		stats, err = h.sessions.UploadInventory(ctx, chatID, file)
	} else {
		stats, err = h.sessions.UploadReference(ctx, chatID, file)
	}
	if err != nil {
		log.Printf("Upload error (%s): %v", doc.FileName, err)
		h.sendMessage(chatID, uploadErrorMessage(err))
		return
	}
	log.Printf("📦 chat %d uploaded %s (%s, %d rows)", chatID, doc.FileName, stats.Role, stats.Rows)

	session, err := h.sessions.Session(ctx, chatID)
	next := ""
	if err == nil {
		next = sessionHint(session)
	}
	h.sendMessage(chatID, buildUploadMessage(stats, next))
}

func uploadErrorMessage(err error) string {
	var missing *entity.MissingColumnError
	switch {
	case errors.As(err, &missing):
		return "❌ Colonne obbligatorie mancanti:\n" + err.Error()
	case errors.Is(err, entity.ErrUnsupportedFormat):
		return "❌ Formato non supportato. Salva il file come CSV o .xlsx."
	case errors.Is(err, entity.ErrEmptyFile), errors.Is(err, entity.ErrNoHeader):
		return "❌ Il file è vuoto o senza intestazione."
	case errors.Is(err, entity.ErrUnsupportedCharset):
		return "❌ Codifica del testo non supportata."
	}
	return "❌ Errore nella lettura del file: " + err.Error()
}

func sessionHint(s entity.Session) string {
	switch {
	case s.Inventory == nil:
		return "Manca il file inventario."
	case len(s.References) == 0:
		return "Manca il file Keepa."
	}
	return "Tutto pronto: /report"
}

func (h *BotHandler) handleReportCommand(ctx context.Context, chatID int64) {
	report, err := h.sessions.Report(ctx, chatID)
	if err != nil && report == nil {
		log.Printf("Report error: %v", err)
		h.sendMessage(chatID, "❌ Errore nel generare il report.")
		return
	}
	h.sendMessage(chatID, buildReportMessage(report, maxMessageLen))
}

func (h *BotHandler) handleFilterCommand(ctx context.Context, chatID int64, args string) {
	args = strings.TrimSpace(args)
	if args == "" {
		session, err := h.sessions.Session(ctx, chatID)
		if err != nil {
			h.sendMessage(chatID, "❌ Errore nel leggere la sessione.")
			return
		}
		h.sendMessage(chatID, "🔎 Filtro attuale: "+usecase.DescribeFilter(session.Filter, session.Sort)+
			"\n\nEsempio: /filter site=IT,DE status=fuori qty=1.. gap=-20..0 name=ssd sort=asc\n/filter clear per rimuoverlo")
		return
	}

	var filter entity.Filter
	order := entity.SortNone
	if !strings.EqualFold(args, "clear") && !strings.EqualFold(args, "reset") {
		var err error
		filter, order, err = usecase.ParseViewArgs(usecase.SplitArgs(args))
		if err != nil {
			h.sendMessage(chatID, "❌ "+err.Error())
			return
		}
	}
	if err := h.sessions.SetView(ctx, chatID, filter, order); err != nil {
		log.Printf("SetView error: %v", err)
		h.sendMessage(chatID, "❌ Errore nel salvare il filtro.")
		return
	}
	h.handleReportCommand(ctx, chatID)
}

func (h *BotHandler) handleEditCommand(ctx context.Context, chatID int64, kind entity.EditKind, amount decimal.Decimal) {
	report, err := h.sessions.AddEdit(ctx, chatID, kind, amount)
	switch {
	case errors.Is(err, entity.ErrAwaitingInput):
		h.sendMessage(chatID, awaitingInputMessage)
		return
	case errors.Is(err, entity.ErrInvalidEdit):
		h.sendMessage(chatID, "❌ "+err.Error())
		return
	case err != nil && report == nil:
		log.Printf("Edit error: %v", err)
		h.sendMessage(chatID, "❌ Errore nell'applicare la modifica.")
		return
	}
	h.sendMessage(chatID, "✏️ Modifica applicata ai prodotti filtrati. /undo per annullarla.\n\n"+
		buildReportMessage(report, maxMessageLen-100))
}

func (h *BotHandler) handleUndoCommand(ctx context.Context, chatID int64) {
	edit, err := h.sessions.Undo(ctx, chatID)
	if err != nil {
		log.Printf("Undo error: %v", err)
		h.sendMessage(chatID, "❌ Errore nell'annullare la modifica.")
		return
	}
	if edit == nil {
		h.sendMessage(chatID, "Nessuna modifica da annullare.")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("↩️ Annullata: %s %s", edit.Kind, edit.Amount.StringFixed(2)))
}

func (h *BotHandler) handleExportCommand(ctx context.Context, chatID int64, args string) {
	format := strings.ToLower(strings.TrimSpace(args))
	if format == "" {
		format = "csv"
	}
	data, exp, err := h.sessions.Export(ctx, chatID, format)
	switch {
	case errors.Is(err, entity.ErrAwaitingInput):
		h.sendMessage(chatID, awaitingInputMessage)
		return
	case errors.Is(err, entity.ErrUnsupportedExport):
		h.sendMessage(chatID, "❌ Formato non disponibile. Usa /export csv, /export xlsx o /export sqlite.")
		return
	case err != nil:
		log.Printf("Export error: %v", err)
		h.sendMessage(chatID, "❌ Errore nell'esportazione.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "report_prezzi." + exp.Extension(),
		Bytes: data,
	})
	if _, err := h.bot.Send(doc); err != nil {
		log.Printf("Send document error: %v", err)
		h.sendMessage(chatID, "❌ Errore nell'invio del file.")
	}
}

func (h *BotHandler) handleHistogramCommand(ctx context.Context, chatID int64) {
	report, ok := h.readyReport(ctx, chatID)
	if !ok {
		return
	}
	h.sendMessage(chatID, buildHistogramMessage(usecase.Histogram(report.View, h.opts.HistogramBins)))
}

func (h *BotHandler) handleHistoryCommand(ctx context.Context, chatID int64) {
	report, ok := h.readyReport(ctx, chatID)
	if !ok {
		return
	}
	h.sendMessage(chatID, buildHistoryMessage(report, maxMessageLen))
}

// readyReport runs the pipeline and answers the chat itself when there is no table
func (h *BotHandler) readyReport(ctx context.Context, chatID int64) (*entity.Report, bool) {
	report, err := h.sessions.Report(ctx, chatID)
	if err != nil && report == nil {
		log.Printf("Report error: %v", err)
		h.sendMessage(chatID, "❌ Errore nel generare il report.")
		return nil, false
	}
	if report.State != entity.StateReady {
		h.sendMessage(chatID, buildReportMessage(report, maxMessageLen))
		return nil, false
	}
	return report, true
}

// downloadFile fetches an uploaded document, capped at MaxUploadBytes
func (h *BotHandler) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := h.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(h.bot.Token), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, h.opts.MaxUploadBytes+1))
}

// sendMessage plain text message
func (h *BotHandler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("Send message error: %v", err)
	}
}

func (h *BotHandler) getWelcomeMessage() string {
	return `👋 Benvenuto nel monitor prezzi!

Confronto i prezzi del tuo inventario Ready Pro con i prezzi attuali di Amazon (Keepa).

1. Invia il file inventario con didascalia "inventario"
2. Invia uno o più file Keepa con didascalia "keepa IT", "keepa DE", ...
3. Usa /report

/help per tutti i comandi`
}

func (h *BotHandler) getHelpMessage() string {
	return `📖 Comandi:

/report - report con stato di ogni prodotto
/filter site=IT status=fuori qty=1..10 gap=-20..0 name=ssd sort=asc - filtra e ordina
/filter clear - rimuove il filtro
/align - prezzo = prezzo Amazon per i prodotti filtrati
/offset 0,01 - prezzo = prezzo Amazon meno l'importo
/setprice 19,90 - prezzo fisso per i prodotti filtrati
/undo - annulla l'ultima modifica
/export csv|xlsx|sqlite - scarica il report
/histogram - distribuzione della differenza %
/history - storico prezzi Keepa
/reset - ricomincia da capo

` + thresholdsLegend(h.opts.Thresholds)
}

func thresholdsLegend(t entity.Thresholds) string {
	return fmt.Sprintf("Stati: 🔴 %s (< %s%%), 🟡 %s (%s%%..%s%%), 🟢 %s (≥ %s%%)",
		entity.StatusOutOfMarket, t.OutOfMarketBelow,
		entity.StatusThinMargin, t.OutOfMarketBelow, t.CompetitiveFrom,
		entity.StatusCompetitive, t.CompetitiveFrom)
}
