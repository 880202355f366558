// internal/bot/bot.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/domain"
	"finance-tracker/internal/ledger"
	"finance-tracker/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Store interface {
	storage.UserStorage
	storage.CategoryStorage
	storage.TransactionStorage
	storage.AssetStorage
	storage.TelegramStorage
}

// Bot turns chat commands into storage calls. It knows nothing about Telegram
// itself; cmd/bot feeds it message text and sends back the reply.
type Bot struct {
	store   Store
	now     func() time.Time
	printer *message.Printer
}

func New(store Store) *Bot {
	return &Bot{
		store:   store,
		now:     time.Now,
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

const helpText = "💰 *Finanças*\n\n" +
	"Comandos:\n" +
	"`/login usuario senha` — vincular sua conta\n" +
	"`/add 45,90 Mercado feira` — registrar despesa\n" +
	"`/add +3000 Outros salário` — registrar receita\n" +
	"`/summary` ou `/summary 2024-05` — resumo do mês\n" +
	"`/list` ou `/list 2024-05` — últimos lançamentos\n" +
	"`/assets` — carteira de investimentos"

const listLimit = 10

var errUsage = errors.New("usage")

// Sensitive reports whether the message carries credentials and should be
// deleted from the chat after handling.
func Sensitive(text string) bool {
	return strings.HasPrefix(SanitizeInput(FixEncoding(text)), "/login")
}

// Handle answers one message from a Telegram user. The reply uses Telegram Markdown.
func (b *Bot) Handle(ctx context.Context, telegramID int64, raw string) string {
	text := SanitizeInput(FixEncoding(raw))
	cmd, args, _ := strings.Cut(text, " ")
	// "/summary@MyBot" in group chats
	cmd, _, _ = strings.Cut(cmd, "@")

	if cmd == "/start" || cmd == "/help" {
		return helpText
	}
	if cmd == "/login" {
		return b.login(ctx, telegramID, args)
	}

	userID, err := b.store.UserByTelegram(ctx, telegramID)
	if errors.Is(err, storage.ErrNotFound) {
		return "🔒 Conta não vinculada. Use `/login usuario senha`"
	}
	if err != nil {
		slog.Error("telegram lookup failed", "error", err, "telegram_id", telegramID)
		return "❌ Erro interno, tente novamente"
	}

	var reply string
	switch cmd {
	case "/add":
		reply, err = b.add(ctx, userID, args)
	case "/summary":
		reply, err = b.summary(ctx, userID, args)
	case "/list":
		reply, err = b.list(ctx, userID, args)
	case "/assets":
		reply, err = b.assets(ctx, userID)
	default:
		return "Comando desconhecido. Use /help"
	}

	switch {
	case errors.Is(err, errUsage):
		return "❌ " + strings.TrimPrefix(err.Error(), errUsage.Error()+": ")
	case err != nil:
		slog.Error("bot command failed", "error", err, "command", cmd, "user_id", userID)
		return "❌ Erro interno, tente novamente"
	}
	return reply
}

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func (b *Bot) login(ctx context.Context, telegramID int64, args string) string {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "❌ Use: `/login usuario senha`"
	}
	user, err := b.store.FindUserByUsername(ctx, fields[0])
	if err != nil || !auth.CheckPassword(fields[1], user.PasswordHash) {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Error("bot login lookup failed", "error", err)
		}
		return "❌ Credenciais inválidas"
	}
	if err := b.store.LinkTelegram(ctx, telegramID, user.ID); err != nil {
		slog.Error("link telegram failed", "error", err, "user_id", user.ID)
		return "❌ Erro interno, tente novamente"
	}
	slog.Info("telegram linked", "user_id", user.ID, "telegram_id", telegramID)
	return fmt.Sprintf("✅ Conectado como *%s*", user.Username)
}

// add parses "[+]amount category [note...]". A leading + records income.
func (b *Bot) add(ctx context.Context, userID uuid.UUID, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", usage("Use: `/add 45,90 Mercado nota` (prefixo + para receita)")
	}

	kind := domain.Expense
	rawAmount := fields[0]
	if strings.HasPrefix(rawAmount, "+") {
		kind = domain.Income
		rawAmount = rawAmount[1:]
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil || !amount.IsPositive() || !domain.FitsPlaces(amount, domain.MoneyPlaces) {
		return "", usage("Valor inválido: %s", fields[0])
	}

	cats, err := b.store.ListCategories(ctx, userID)
	if err != nil {
		return "", err
	}
	cat, rest, ok := matchCategory(cats, fields[1:])
	if !ok {
		return "", usage("Categoria não encontrada: %s", fields[1])
	}

	now := b.now().UTC()
	t, err := b.store.CreateTransaction(ctx, userID, domain.TransactionInput{
		Kind:       kind,
		Amount:     amount,
		OccurredOn: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		CategoryID: cat.ID,
		Note:       strings.Join(rest, " "),
	})
	if err != nil {
		return "", err
	}

	label := "Despesa"
	if kind == domain.Income {
		label = "Receita"
	}
	return fmt.Sprintf("✅ %s de %s em *%s* (%s)", label, b.money(t.Amount), cat.Name, t.Day()), nil
}

// matchCategory finds the active category whose name is the longest prefix of
// words, case-insensitively, and returns the remaining words.
func matchCategory(cats []domain.Category, words []string) (domain.Category, []string, bool) {
	for n := len(words); n > 0; n-- {
		name := strings.Join(words[:n], " ")
		for _, c := range cats {
			if c.IsActive && strings.EqualFold(c.Name, name) {
				return c, words[n:], true
			}
		}
	}
	return domain.Category{}, nil, false
}

func (b *Bot) month(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return ledger.CurrentMonth(b.now()), nil
	}
	if _, err := ledger.ParseMonth(arg); err != nil {
		return "", usage("Mês inválido, use AAAA-MM")
	}
	return arg, nil
}

func (b *Bot) summary(ctx context.Context, userID uuid.UUID, args string) (string, error) {
	month, err := b.month(args)
	if err != nil {
		return "", err
	}
	txns, err := b.store.ListTransactions(ctx, userID, ledger.Query{Month: month})
	if err != nil {
		return "", err
	}
	if len(txns) == 0 {
		return "📭 Nenhum lançamento em " + month, nil
	}
	cats, err := b.store.ListCategories(ctx, userID)
	if err != nil {
		return "", err
	}
	return b.formatSummary(ledger.Summarize(month, txns, cats)), nil
}

func (b *Bot) formatSummary(s domain.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *Resumo %s*\n\n", s.Month)
	fmt.Fprintf(&sb, "Receitas: %s\n", b.money(s.Totals.Income))
	fmt.Fprintf(&sb, "Despesas: %s\n", b.money(s.Totals.Expense))
	fmt.Fprintf(&sb, "Saldo: *%s*\n", b.money(s.Totals.Balance))
	if len(s.ByCategory) > 0 {
		sb.WriteString("\nPor categoria:\n")
		for _, c := range s.ByCategory {
			fmt.Fprintf(&sb, "- %s: %s\n", c.CategoryName, b.money(c.Total))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) list(ctx context.Context, userID uuid.UUID, args string) (string, error) {
	month, err := b.month(args)
	if err != nil {
		return "", err
	}
	txns, err := b.store.ListTransactions(ctx, userID, ledger.Query{Month: month, Sort: ledger.SortDateDesc})
	if err != nil {
		return "", err
	}
	if len(txns) == 0 {
		return "📭 Nenhum lançamento em " + month, nil
	}

	lines := []string{fmt.Sprintf("🧾 *Lançamentos %s*", month)}
	for i, t := range txns {
		if i == listLimit {
			lines = append(lines, fmt.Sprintf("… e mais %d", len(txns)-listLimit))
			break
		}
		sign := "-"
		if t.Kind == domain.Income {
			sign = "+"
		}
		name := ""
		if t.Category != nil {
			name = t.Category.Name
		}
		line := fmt.Sprintf("%s %s%s %s", t.OccurredOn.Format("02/01"), sign, b.money(t.Amount), name)
		if t.Note != "" {
			line += " — " + t.Note
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) assets(ctx context.Context, userID uuid.UUID) (string, error) {
	assets, err := b.store.ListAssets(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(assets) == 0 {
		return "📭 Nenhum ativo cadastrado", nil
	}
	p := ledger.SummarizePortfolio(assets)
	lines := []string{fmt.Sprintf("📈 *Carteira*: %s", b.money(p.TotalInvested))}
	for _, slice := range p.ByType {
		lines = append(lines, fmt.Sprintf("- %s: %s", slice.AssetType, b.money(slice.Total)))
	}
	return strings.Join(lines, "\n"), nil
}

// money formats an amount as Brazilian reais, e.g. "R$ 1.234,50".
func (b *Bot) money(d decimal.Decimal) string {
	return b.printer.Sprintf("R$ %.2f", d.Round(2).InexactFloat64())
}

// ParseAmount accepts "45.90", "45,90" and "1.234,56".
func ParseAmount(s string) (decimal.Decimal, error) {
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// SanitizeInput collapses every run of whitespace into a single space.
func SanitizeInput(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// FixEncoding repairs text some clients send as Windows-1252 instead of UTF-8.
func FixEncoding(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	fixed, err := charmap.Windows1252.NewDecoder().String(s)
	if err == nil && utf8.ValidString(fixed) {
		return fixed
	}
	return strings.ToValidUTF8(s, "")
}
